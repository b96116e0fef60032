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

// Package registration builds the storage client for a configured cache
package registration

import (
	"fmt"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/badger"
	"github.com/trickstercache/shelfcache/pkg/cache/bbolt"
	"github.com/trickstercache/shelfcache/pkg/cache/filesystem"
	"github.com/trickstercache/shelfcache/pkg/cache/memory"
	"github.com/trickstercache/shelfcache/pkg/cache/options"
	"github.com/trickstercache/shelfcache/pkg/cache/providers"
	"github.com/trickstercache/shelfcache/pkg/cache/redis"
	"github.com/trickstercache/shelfcache/pkg/cache/sqlite"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
)

// NewClient returns a connected storage Client for the provided options
func NewClient(cfg *options.Options, logger logging.Logger) (cache.Client, error) {
	if cfg == nil {
		cfg = options.New()
	}
	if err := cfg.Initialize(cfg.Name); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}

	var c cache.Client
	switch cfg.ProviderID {
	case providers.MemoryID:
		c = memory.New(cfg.Name)
	case providers.FilesystemID:
		c = filesystem.New(cfg.Name, cfg.Filesystem)
	case providers.RedisID:
		c = redis.New(cfg.Name, cfg.Redis)
	case providers.BBoltID:
		c = bbolt.New(cfg.Name, cfg.BBolt)
	case providers.BadgerDBID:
		c = badger.New(cfg.Name, cfg.Badger)
	case providers.SQLiteID:
		c = sqlite.New(cfg.Name, cfg.SQLite)
	default:
		return nil, fmt.Errorf("%w: %s", options.ErrInvalidProvider, cfg.Provider)
	}

	logger.Debug("connecting cache storage",
		logging.Pairs{"cacheName": cfg.Name, "provider": cfg.Provider})
	if err := c.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s cache %q: %w", cfg.Provider, cfg.Name, err)
	}
	return c, nil
}
