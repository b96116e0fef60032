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

// Package providers enumerates the compression providers that can be applied
// to persisted cache snapshots
package providers

import (
	"strconv"
	"strings"
)

const (
	Zstandard Provider = 1 << iota
	Brotli                 // 2
	Identity  Provider = 0 // no encoding
	Snappy    Provider = 128

	IdentityValue  = "none"
	ZstandardValue = "zstd"
	BrotliValue    = "br"
	SnappyValue    = "snappy"
	// might be used in configs
	ZstandardAltValue = "zstandard"
	BrotliAltValue    = "brotli"
	IdentityAltValue  = "identity"
)

type (
	// Provider is the single-byte identifier of an encoding, which is also
	// written as the leading byte of an encoded snapshot
	Provider      byte
	Lookup        map[string]Provider
	ReverseLookup map[Provider]string
)

var providerValLookup = ReverseLookup{
	Identity:  IdentityValue,
	Zstandard: ZstandardValue,
	Brotli:    BrotliValue,
	Snappy:    SnappyValue,
}

var providerLookup = Lookup{
	IdentityValue:     Identity,
	IdentityAltValue:  Identity,
	"":                Identity,
	ZstandardValue:    Zstandard,
	ZstandardAltValue: Zstandard,
	BrotliValue:       Brotli,
	BrotliAltValue:    Brotli,
	SnappyValue:       Snappy,
}

func (p Provider) String() string {
	if v, ok := providerValLookup[p]; ok {
		return v
	}
	return strconv.Itoa(int(p))
}

// IsKnown returns true if the Provider is a supported encoding
func (p Provider) IsKnown() bool {
	_, ok := providerValLookup[p]
	return ok
}

// ProviderID returns the value of the provided encoding provider name,
// and false if the name is not supported
func ProviderID(providerName string) (Provider, bool) {
	p, ok := providerLookup[strings.ToLower(strings.TrimSpace(providerName))]
	return p, ok
}
