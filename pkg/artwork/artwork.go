/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package artwork fetches the set of images associated with a game
package artwork

import (
	"strconv"

	"github.com/trickstercache/shelfcache/pkg/fetch"
)

// Kind is a named image role
type Kind int

const (
	// Icon is the small square game icon
	Icon Kind = iota
	// Logo is the transparent title logo
	Logo
	// Header is the wide store header capsule
	Header
	// Library is the tall library capsule
	Library
)

// Kinds lists every Kind in fetch order
var Kinds = []Kind{Icon, Logo, Header, Library}

var kindNames = map[Kind]string{
	Icon:    "icon",
	Logo:    "logo",
	Header:  "header",
	Library: "library",
}

func (k Kind) String() string {
	if v, ok := kindNames[k]; ok {
		return v
	}
	return strconv.Itoa(int(k))
}

// LocatorSet holds up to one locator per Kind. An empty string means absent.
type LocatorSet struct {
	Icon    string `json:"icon,omitempty"`
	Logo    string `json:"logo,omitempty"`
	Header  string `json:"header,omitempty"`
	Library string `json:"library,omitempty"`
}

// Get returns the locator for k
func (s LocatorSet) Get(k Kind) string {
	switch k {
	case Icon:
		return s.Icon
	case Logo:
		return s.Logo
	case Header:
		return s.Header
	case Library:
		return s.Library
	}
	return ""
}

// Count returns the number of present locators
func (s LocatorSet) Count() int {
	var n int
	for _, k := range Kinds {
		if s.Get(k) != "" {
			n++
		}
	}
	return n
}

// Result holds one downloaded blob per Kind. A nil blob means the download
// failed or no locator was provided.
type Result struct {
	Icon    *fetch.Blob `json:"icon,omitempty"`
	Logo    *fetch.Blob `json:"logo,omitempty"`
	Header  *fetch.Blob `json:"header,omitempty"`
	Library *fetch.Blob `json:"library,omitempty"`
}

// Get returns the blob for k
func (r Result) Get(k Kind) *fetch.Blob {
	switch k {
	case Icon:
		return r.Icon
	case Logo:
		return r.Logo
	case Header:
		return r.Header
	case Library:
		return r.Library
	}
	return nil
}

// Set stores the blob for k
func (r *Result) Set(k Kind, b *fetch.Blob) {
	switch k {
	case Icon:
		r.Icon = b
	case Logo:
		r.Logo = b
	case Header:
		r.Header = b
	case Library:
		r.Library = b
	}
}

// Count returns the number of non-nil blobs
func (r Result) Count() int {
	var n int
	for _, k := range Kinds {
		if r.Get(k) != nil {
			n++
		}
	}
	return n
}

// Size returns the total bytes of all blobs
func (r Result) Size() int64 {
	var n int64
	for _, k := range Kinds {
		if b := r.Get(k); b != nil {
			n += int64(len(b.Data))
		}
	}
	return n
}
