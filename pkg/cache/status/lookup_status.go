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

// Package status governs the possible Cache Lookup Status values
package status

import "strconv"

// LookupStatus defines the possible status of a cache lookup
type LookupStatus int

const (
	// LookupStatusHit indicates a full cache hit on lookup
	LookupStatusHit = LookupStatus(iota)
	// LookupStatusKeyMiss indicates a full key miss (cache key does not exist) on lookup
	LookupStatusKeyMiss
	// LookupStatusExpired indicates the key existed but its entry outlived the TTL
	// and was purged during the lookup
	LookupStatusExpired
	// LookupStatusBypass indicates the cache is disabled and was not consulted
	LookupStatusBypass
	// LookupStatusError indicates that there was an error looking up the object in the cache
	LookupStatusError
)

var cacheLookupStatusNames = map[string]LookupStatus{
	"hit":     LookupStatusHit,
	"kmiss":   LookupStatusKeyMiss,
	"expired": LookupStatusExpired,
	"bypass":  LookupStatusBypass,
	"error":   LookupStatusError,
}

var cacheLookupStatusValues = map[LookupStatus]string{
	LookupStatusHit:     "hit",
	LookupStatusKeyMiss: "kmiss",
	LookupStatusExpired: "expired",
	LookupStatusBypass:  "bypass",
	LookupStatusError:   "error",
}

func (s LookupStatus) String() string {
	if v, ok := cacheLookupStatusValues[s]; ok {
		return v
	}
	return strconv.Itoa(int(s))
}

// IsHit returns true if the status represents a usable cached value
func (s LookupStatus) IsHit() bool {
	return s == LookupStatusHit
}

// FromString returns the LookupStatus for the provided name
func FromString(name string) (LookupStatus, bool) {
	s, ok := cacheLookupStatusNames[name]
	return s, ok
}
