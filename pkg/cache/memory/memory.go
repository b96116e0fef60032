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

// Package memory is the memory implementation of the shelfcache storage client
// and uses a sync.Map to manage records. It does not survive process restarts
// and is intended for tests and cache-only deployments.
package memory

import (
	"sync"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
)

// Cache implements the cache.Client interface
var _ cache.Client = &Cache{}

type record struct {
	data    []byte
	expires time.Time
}

// Cache defines a a Memory Cache client that conforms to the Client interface
type Cache struct {
	Name   string
	client sync.Map
	now    func() time.Time
}

// New returns a new memory cache as a shelfcache storage client
func New(name string) *Cache {
	return &Cache{
		Name: name,
		now:  time.Now,
	}
}

// Remove deletes the keys
func (c *Cache) Remove(cacheKeys ...string) error {
	for _, k := range cacheKeys {
		c.client.Delete(k)
	}
	return nil
}

// Close drops all records
func (c *Cache) Close() error {
	c.client.Clear()
	return nil
}

// Connect initializes the Cache
func (c *Cache) Connect() error {
	return nil
}

// Store places a copy of the data in the cache using the specified key and ttl
func (c *Cache) Store(cacheKey string, data []byte, ttl time.Duration) error {
	r := &record{data: make([]byte, len(data))}
	copy(r.data, data)
	if ttl > 0 {
		r.expires = c.now().Add(ttl)
	}
	c.client.Store(cacheKey, r)
	return nil
}

// Retrieve looks for an object in cache and returns a copy of it (or an error if not found)
func (c *Cache) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	v, ok := c.client.Load(cacheKey)
	if !ok {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	r := v.(*record)
	if !r.expires.IsZero() && c.now().After(r.expires) {
		c.client.Delete(cacheKey)
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out, status.LookupStatusHit, nil
}
