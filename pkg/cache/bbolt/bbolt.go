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

// Package bbolt is the bbolt implementation of the shelfcache storage client
package bbolt

import (
	"fmt"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/bbolt/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
	"go.etcd.io/bbolt"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// CacheClient describes a BBolt CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
	dbh    *bbolt.DB
}

// New returns a new bbolt cache as a shelfcache storage client
func New(cacheName string, opts *options.Options) *CacheClient {
	if opts == nil {
		opts = options.New()
	}
	return &CacheClient{
		Name:   cacheName,
		Config: opts,
	}
}

// Close closes the bbolt database
func (c *CacheClient) Close() error {
	if c.dbh == nil {
		return nil
	}
	err := c.dbh.Close()
	c.dbh = nil
	return err
}

// Connect opens the database file and ensures the configured bucket exists
func (c *CacheClient) Connect() error {
	var err error
	c.dbh, err = bbolt.Open(c.Config.Filename, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	err = c.dbh.Update(func(tx *bbolt.Tx) error {
		_, err2 := tx.CreateBucketIfNotExists([]byte(c.Config.Bucket))
		if err2 != nil {
			return fmt.Errorf("create bucket: %w", err2)
		}
		return nil
	})
	if err != nil {
		c.dbh.Close()
		c.dbh = nil
		return err
	}
	return nil
}

// Store writes data under cacheKey. bbolt has no native expiration, so
// ttl is not enforced; the Cache Store applies its own TTL to entries.
func (c *CacheClient) Store(cacheKey string, data []byte, _ time.Duration) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		return b.Put([]byte(cacheKey), data)
	})
}

// Retrieve returns a copy of the data stored under cacheKey
func (c *CacheClient) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	err := c.dbh.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		v := b.Get([]byte(cacheKey))
		if v == nil {
			return cache.ErrKNF
		}
		// v is only valid for the life of the transaction
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, status.LookupStatusKeyMiss, err
	}
	return data, status.LookupStatusHit, nil
}

// Remove deletes the keys from the bucket
func (c *CacheClient) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		for _, cacheKey := range cacheKeys {
			if err := b.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}
