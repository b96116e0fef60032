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

// Package filesystem is the filesystem implementation of the shelfcache storage client
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/filesystem/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

// ErrKeyRequired is returned when storing under an empty key
var ErrKeyRequired = errors.New("cacheKey required")

// New returns a new Filesystem storage client
func New(name string, config *options.Options) *CacheClient {
	if config == nil {
		config = options.New()
	}
	return &CacheClient{
		Name:   name,
		Config: config,
	}
}

// CacheClient describes a Filesystem CacheClient
type CacheClient struct {
	Name   string
	Config *options.Options
}

// Close is a no-op for the filesystem client
func (c *CacheClient) Close() error {
	return nil
}

// Connect ensures the cache path exists and is writable
func (c *CacheClient) Connect() error {
	return makeDirectory(c.Config.CachePath)
}

// Remove deletes the files for the provided keys; absent files are ignored
func (c *CacheClient) Remove(cacheKeys ...string) error {
	for _, cacheKey := range cacheKeys {
		err := os.Remove(c.getFileName(cacheKey))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Store writes the data to a temp file and renames it into place, so
// readers never observe a partially-written record. ttl is not enforced.
func (c *CacheClient) Store(cacheKey string, data []byte, _ time.Duration) error {
	if cacheKey == "" {
		return ErrKeyRequired
	}
	dataFile := c.getFileName(cacheKey)
	tf, err := os.CreateTemp(c.Config.CachePath, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err = tf.Write(data); err != nil {
		tf.Close()
		os.Remove(tf.Name())
		return err
	}
	if err = tf.Close(); err != nil {
		os.Remove(tf.Name())
		return err
	}
	return os.Rename(tf.Name(), dataFile)
}

// Retrieve reads the file for cacheKey
func (c *CacheClient) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	data, err := os.ReadFile(c.getFileName(cacheKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.LookupStatusKeyMiss, cache.ErrKNF
		}
		return nil, status.LookupStatusError, err
	}
	return data, status.LookupStatusHit, nil
}

func (c *CacheClient) getFileName(cacheKey string) string {
	return filepath.Join(
		c.Config.CachePath,
		strings.NewReplacer("/", "~1", "\\", "~2", "..", "~3", ".", "~4").Replace(cacheKey),
	) + ".data"
}

// makeDirectory creates a directory on the filesystem and returns the error in the event of a failure.
func makeDirectory(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err == nil {
		// verify writability by attempting to touch a test file in the cache path
		tf := filepath.Join(path, ".test."+strconv.FormatInt(time.Now().UnixNano(), 10))
		err = os.WriteFile(tf, []byte(""), 0o600)
		if err == nil {
			os.Remove(tf)
		}
	}
	if err != nil {
		return fmt.Errorf("[%s] directory is not writeable by shelfcache: %w", path, err)
	}
	return nil
}
