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

package bbolt

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/bbolt/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "cacheKey"

func newCacheConfig(dbPath string) *options.Options {
	return &options.Options{Filename: dbPath, Bucket: "shelfcache_test"}
}

func storeBenchmark(b *testing.B) *CacheClient {
	bc := New(b.Name(), newCacheConfig(filepath.Join(b.TempDir(), "test.db")))
	if err := bc.Connect(); err != nil {
		b.Fatal(err)
	}
	for n := 0; n < b.N; n++ {
		err := bc.Store(cacheKey+strconv.Itoa(n), []byte("data"+strconv.Itoa(n)), time.Minute)
		if err != nil {
			b.Error(err)
		}
	}
	return bc
}

func TestBboltCache_Connect(t *testing.T) {
	bc := New(t.Name(), newCacheConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, bc.Connect())
	require.NoError(t, bc.Close())
	// closing twice is safe
	require.NoError(t, bc.Close())
}

func TestBboltCache_ConnectFailed(t *testing.T) {
	bc := New(t.Name(), newCacheConfig(filepath.Join(t.TempDir(), "missing", "dir", "test.db")))
	require.Error(t, bc.Connect())
}

func TestBboltCache_ConnectBadBucketName(t *testing.T) {
	cfg := newCacheConfig(filepath.Join(t.TempDir(), "test.db"))
	cfg.Bucket = ""
	bc := New(t.Name(), cfg)
	err := bc.Connect()
	require.Error(t, err)
	require.Contains(t, err.Error(), "create bucket")
}

func TestBboltCache_StoreRetrieveRemove(t *testing.T) {
	bc := New(t.Name(), newCacheConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, bc.Connect())
	defer bc.Close()

	require.NoError(t, bc.Store(cacheKey, []byte("data"), 0))

	data, s, err := bc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, "data", string(data))

	require.NoError(t, bc.Remove(cacheKey, "notthere"))

	_, s, err = bc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)
}

func TestBboltCache_PersistsAcrossReopen(t *testing.T) {
	cfg := newCacheConfig(filepath.Join(t.TempDir(), "test.db"))
	bc := New(t.Name(), cfg)
	require.NoError(t, bc.Connect())
	require.NoError(t, bc.Store(cacheKey, []byte("durable"), 0))
	require.NoError(t, bc.Close())

	bc = New(t.Name(), cfg)
	require.NoError(t, bc.Connect())
	defer bc.Close()
	data, _, err := bc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, "durable", string(data))
}

func BenchmarkCache_Store(b *testing.B) {
	bc := storeBenchmark(b)
	defer bc.Close()
}

func BenchmarkCache_Retrieve(b *testing.B) {
	bc := storeBenchmark(b)
	defer bc.Close()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, _, err := bc.Retrieve(cacheKey + strconv.Itoa(n)); err != nil {
			b.Error(err)
		}
	}
}
