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

package registration

import (
	"path/filepath"
	"testing"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/alicebob/miniredis"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	for _, provider := range []string{"memory", "filesystem", "bbolt", "badger", "sqlite", "redis"} {
		t.Run(provider, func(t *testing.T) {
			dir := t.TempDir()
			o := options.New()
			o.Provider = provider
			o.Filesystem.CachePath = dir
			o.BBolt.Filename = filepath.Join(dir, "test.db")
			o.Badger.Directory = dir
			o.Badger.ValueDirectory = dir
			o.SQLite.Filename = filepath.Join(dir, "test.sqlite")
			o.Redis.Endpoint = s.Addr()

			c, err := NewClient(o, nil)
			require.NoError(t, err)
			defer c.Close()

			require.NoError(t, c.Store("k", []byte("v"), 0))
			b, ls, err := c.Retrieve("k")
			require.NoError(t, err)
			require.Equal(t, status.LookupStatusHit, ls)
			require.Equal(t, "v", string(b))

			require.NoError(t, c.Remove("k"))
			_, ls, err = c.Retrieve("k")
			require.ErrorIs(t, err, cache.ErrKNF)
			require.Equal(t, status.LookupStatusKeyMiss, ls)
		})
	}
}

func TestNewClient_InvalidProvider(t *testing.T) {
	o := options.New()
	o.Provider = "mongo"
	_, err := NewClient(o, nil)
	require.ErrorIs(t, err, options.ErrInvalidProvider)
}
