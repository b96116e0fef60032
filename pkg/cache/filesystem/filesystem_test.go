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

package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/filesystem/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "shelf.snapshot"

func TestFilesystemCache_Connect(t *testing.T) {
	fc := New(t.Name(), &options.Options{CachePath: filepath.Join(t.TempDir(), "nested")})
	require.NoError(t, fc.Connect())
	require.NoError(t, fc.Close())
}

func TestFilesystemCache_ConnectFailed(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	// a regular file cannot be used as the cache directory
	fc := New(t.Name(), &options.Options{CachePath: filepath.Join(f, "sub")})
	err := fc.Connect()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not writeable")
}

func TestFilesystemCache_StoreRetrieveRemove(t *testing.T) {
	fc := New(t.Name(), &options.Options{CachePath: t.TempDir()})
	require.NoError(t, fc.Connect())

	require.ErrorIs(t, fc.Store("", []byte("x"), 0), ErrKeyRequired)

	require.NoError(t, fc.Store(cacheKey, []byte("data"), 0))
	require.NoError(t, fc.Store(cacheKey, []byte("data2"), 0))

	data, s, err := fc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, "data2", string(data))

	require.NoError(t, fc.Remove(cacheKey))
	require.NoError(t, fc.Remove(cacheKey))

	_, s, err = fc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)
}

func TestGetFileName(t *testing.T) {
	fc := New(t.Name(), &options.Options{CachePath: "/cache"})
	require.Equal(t, "/cache/a~1b~3c~4d.data", fc.getFileName("a/b..c.d"))
}
