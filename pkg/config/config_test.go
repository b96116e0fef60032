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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cache "github.com/trickstercache/shelfcache/pkg/cache/options"
	"github.com/trickstercache/shelfcache/pkg/cache/providers"
	encoding "github.com/trickstercache/shelfcache/pkg/encoding/providers"
	rl "github.com/trickstercache/shelfcache/pkg/ratelimit/options"

	"github.com/stretchr/testify/require"
)

const testYAML = `
main:
  instance_id: 2
logging:
  log_level: debug
cache:
  provider: sqlite
  ttl: 1h
  max_size_objects: 50
  compression: zstd
  sqlite:
    filename: /var/lib/shelfcache/cache.db
rate_limit:
  requests_per_second: 2
fetcher:
  timeout: 3s
loader:
  priority: recent
  max_games: 25
source:
  type: api
  proxy_url: https://proxy.example.com/api
  steam_id: "76561197960287930"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelfcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Validate())
	require.Equal(t, "bbolt", c.Cache.Provider)
	require.Equal(t, rl.DefaultRequestsPerSecond, c.RateLimit.RequestsPerSecond)
	require.Equal(t, "none", c.Tracing.Provider)
	require.Empty(t, c.ConfigFilePath())
	require.True(t, c.CheckFileLastModified().IsZero())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, testYAML)
	c, err := load(&Flags{ConfigPath: path}, []string{})
	require.NoError(t, err)
	require.Equal(t, path, c.ConfigFilePath())
	require.False(t, c.CheckFileLastModified().IsZero())

	require.Equal(t, 2, c.Main.InstanceID)
	require.Equal(t, "debug", c.Logging.LogLevel)

	require.Equal(t, providers.SQLiteID, c.Cache.ProviderID)
	require.Equal(t, encoding.Zstandard, c.Cache.CompressionID)
	require.Equal(t, time.Hour, c.Cache.TTL)
	require.Equal(t, 50, c.Cache.MaxSizeObjects)
	require.Equal(t, "/var/lib/shelfcache/cache.db", c.Cache.SQLite.Filename)
	// omitted values keep their defaults
	require.True(t, c.Cache.Enabled)
	require.Equal(t, cache.DefaultMaxSizeBytes, c.Cache.MaxSizeBytes)
	require.NotNil(t, c.Cache.BBolt)

	require.Equal(t, 2.0, c.RateLimit.RequestsPerSecond)
	require.Equal(t, rl.DefaultMaxQueueSize, c.RateLimit.MaxQueueSize)
	require.Equal(t, 3*time.Second, c.Fetcher.Timeout)
	require.True(t, c.Fetcher.EnableFallback)
	require.Equal(t, "recent", c.Loader.Priority)
	require.Equal(t, 25, c.Loader.MaxGames)
	require.Equal(t, "api", c.Source.Type)
	require.NoError(t, c.Source.Validate())

	require.Contains(t, c.String(), "provider: sqlite")
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, testYAML)
	environ := []string{
		"SHELFCACHE_CACHE_TTL=2h",
		"SHELFCACHE_LOGGING_LOG_LEVEL=error",
		"SHELFCACHE_CACHE_SQLITE_TABLE=artwork",
		"SHELFCACHE_RATE_LIMIT_REQUESTS_PER_SECOND=8",
		"SHELFCACHE_METRICS_ENABLED=true",
		"UNRELATED=1",
	}
	c, err := load(&Flags{ConfigPath: path, LogLevel: "warn", MaxGames: 5, Priority: "playtime"}, environ)
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, c.Cache.TTL)
	require.Equal(t, "artwork", c.Cache.SQLite.Table)
	require.Equal(t, 8.0, c.RateLimit.RequestsPerSecond)
	require.True(t, c.Metrics.Enabled)
	// flags win over both the file and the environment
	require.Equal(t, "warn", c.Logging.LogLevel)
	require.Equal(t, 5, c.Loader.MaxGames)
	require.Equal(t, "playtime", c.Loader.Priority)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(&Flags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}, []string{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  []string
		err  error
	}{
		{name: "ttl", body: "cache:\n  ttl: -1s\n", err: cache.ErrInvalidTTL},
		{name: "provider", body: "cache:\n  provider: floppy\n", err: cache.ErrInvalidProvider},
		{name: "eviction target", body: "cache:\n  eviction_target: 1.5\n", err: cache.ErrInvalidEvictionTarget},
		{name: "rate", body: "rate_limit:\n  requests_per_second: 0\n", err: rl.ErrInvalidRate},
		{name: "tracing", body: "tracing:\n  provider: carrier-pigeon\n", err: ErrInvalidTracingProvider},
		{name: "env", body: "", env: []string{"SHELFCACHE_CACHE_MAX_SIZE_OBJECTS=-1"}, err: cache.ErrNegativeLimit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := test.env
			if env == nil {
				env = []string{}
			}
			_, err := load(&Flags{ConfigPath: writeConfig(t, test.body)}, env)
			require.ErrorIs(t, err, test.err)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := load(&Flags{ConfigPath: writeConfig(t, "cache: [unterminated")}, []string{})
	require.Error(t, err)
	_, err = load(&Flags{ConfigPath: writeConfig(t, "cache:\n  ttl: soon\n")}, []string{})
	require.Error(t, err)
}

func TestNullSection(t *testing.T) {
	c, err := load(&Flags{ConfigPath: writeConfig(t, "fetcher: null\nloader: ~\n")}, []string{})
	require.NoError(t, err)
	require.NotNil(t, c.Fetcher)
	require.NotNil(t, c.Loader)
}
