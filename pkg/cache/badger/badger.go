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

// Package badger is the BadgerDB implementation of the shelfcache storage client
package badger

import (
	"errors"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/badger/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/dgraph-io/badger/v4"
)

var (
	// CacheClient implements the cache.Client interface
	_ cache.Client = &CacheClient{}
)

// CacheClient describes a Badger CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
	dbh    *badger.DB
}

// New returns a new, unconnected Badger client
func New(name string, cfg *options.Options) *CacheClient {
	if cfg == nil {
		cfg = options.New()
	}
	return &CacheClient{
		Name:   name,
		Config: cfg,
	}
}

// Connect opens the configured Badger key-value store
func (c *CacheClient) Connect() error {
	opts := badger.DefaultOptions(c.Config.Directory).WithLogger(nil)
	if c.Config.ValueDirectory != "" {
		opts.ValueDir = c.Config.ValueDirectory
	}
	var err error
	c.dbh, err = badger.Open(opts)
	return err
}

// Remove deletes the keys from the store
func (c *CacheClient) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(txn *badger.Txn) error {
		for _, cacheKey := range cacheKeys {
			if err := txn.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the Badger database
func (c *CacheClient) Close() error {
	if c.dbh == nil {
		return nil
	}
	err := c.dbh.Close()
	c.dbh = nil
	return err
}

// Store places the the data into the Badger Cache using the provided Key and TTL
func (c *CacheClient) Store(cacheKey string, data []byte, ttl time.Duration) error {
	e := badger.NewEntry([]byte(cacheKey), data)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return c.dbh.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

// Retrieve gets data from the Badger Cache using the provided Key
func (c *CacheClient) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	err := c.dbh.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == nil {
		return data, status.LookupStatusHit, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return nil, status.LookupStatusError, err
}
