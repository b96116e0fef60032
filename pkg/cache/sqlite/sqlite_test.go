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

package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/sqlite/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/stretchr/testify/require"
)

const cacheKey = "cacheKey"

func newClient(t *testing.T) *CacheClient {
	t.Helper()
	c := New(t.Name(), &options.Options{
		Filename:      filepath.Join(t.TempDir(), "test.sqlite"),
		Table:         "kv",
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLite_ConnectValidation(t *testing.T) {
	c := New(t.Name(), &options.Options{Filename: " ", Table: "kv"})
	require.ErrorIs(t, c.Connect(), ErrPathRequired)

	c = New(t.Name(), &options.Options{Filename: "x.sqlite", Table: "kv; DROP TABLE x"})
	require.ErrorIs(t, c.Connect(), ErrInvalidTable)
}

func TestSQLite_StoreRetrieveRemove(t *testing.T) {
	c := newClient(t)

	require.NoError(t, c.Store(cacheKey, []byte("data"), 0))
	require.NoError(t, c.Store(cacheKey, []byte("data2"), 0))

	data, s, err := c.Retrieve(cacheKey)
	require.NoError(t, err)
	require.Equal(t, status.LookupStatusHit, s)
	require.Equal(t, "data2", string(data))

	require.NoError(t, c.Remove(cacheKey, "notthere"))
	_, s, err = c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
	require.Equal(t, status.LookupStatusKeyMiss, s)
	require.NoError(t, c.Remove())
}

func TestSQLite_Expiry(t *testing.T) {
	c := newClient(t)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Store(cacheKey, []byte("data"), time.Second))
	_, _, err := c.Retrieve(cacheKey)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, _, err = c.Retrieve(cacheKey)
	require.ErrorIs(t, err, cache.ErrKNF)
}

func TestSQLite_CloseUnconnected(t *testing.T) {
	require.NoError(t, New(t.Name(), nil).Close())
}
