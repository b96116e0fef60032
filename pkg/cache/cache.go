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

// Package cache defines the storage client interface used to persist
// shelfcache state, and provides general cache functionality
package cache

import (
	"errors"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache/status"
)

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.New("key not found in cache")

// Client is the interface for the supported durable key-value storage
// providers. When making new providers, Retrieve() must return ErrKNF on a
// miss, and Remove() must treat absent keys as a no-op.
type Client interface {
	Connect() error
	// Store writes data under cacheKey. A ttl of 0 means the record
	// does not expire.
	Store(cacheKey string, data []byte, ttl time.Duration) error
	Retrieve(cacheKey string) ([]byte, status.LookupStatus, error)
	Remove(cacheKeys ...string) error
	Close() error
}
