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

package badger

import (
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/badger/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "cacheKey"

func newClient(t *testing.T) *CacheClient {
	t.Helper()
	dir := t.TempDir()
	bc := New(t.Name(), &options.Options{Directory: dir, ValueDirectory: dir})
	require.NoError(t, bc.Connect())
	t.Cleanup(func() { bc.Close() })
	return bc
}

func TestBadgerCache_StoreRetrieveRemove(t *testing.T) {
	bc := newClient(t)

	require.NoError(t, bc.Store(cacheKey, []byte("data"), time.Minute))
	data, s, err := bc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, "data", string(data))

	require.NoError(t, bc.Remove(cacheKey, "notthere"))
	_, s, err = bc.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)
}

func TestBadgerCache_StoreNoExpiry(t *testing.T) {
	bc := newClient(t)
	require.NoError(t, bc.Store(cacheKey, []byte("forever"), 0))
	data, _, err := bc.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, "forever", string(data))
}

func TestBadgerCache_CloseUnconnected(t *testing.T) {
	require.NoError(t, New(t.Name(), nil).Close())
}
