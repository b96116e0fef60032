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

// Package setup builds a ServerInstance from configuration
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	goruntime "runtime"

	"github.com/trickstercache/shelfcache/pkg/appinfo"
	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/cache/providers"
	"github.com/trickstercache/shelfcache/pkg/cache/registration"
	"github.com/trickstercache/shelfcache/pkg/config"
	"github.com/trickstercache/shelfcache/pkg/daemon/instance"
	"github.com/trickstercache/shelfcache/pkg/errors"
	"github.com/trickstercache/shelfcache/pkg/fetch"
	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
	tr "github.com/trickstercache/shelfcache/pkg/observability/tracing/registration"
	"github.com/trickstercache/shelfcache/pkg/ratelimit"
)

// LoadAndValidate loads the configuration described by flags
func LoadAndValidate(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	return cfg, nil
}

// ApplyConfig builds every component described by cfg. Console logs and
// stdout spans are written to w. On error, any component already built is
// closed.
func ApplyConfig(cfg *config.Config, w io.Writer) (si *instance.ServerInstance, err error) {
	if cfg == nil || cfg.Main == nil {
		return nil, errors.ErrInvalidOptions
	}
	if w == nil {
		w = os.Stderr
	}
	if cfg.Main.ServerName != "" {
		appinfo.SetServer(cfg.Main.ServerName)
	}
	metrics.BuildInfo.WithLabelValues(goruntime.Version(),
		appinfo.GitCommitID, appinfo.Version).Set(1)

	si = &instance.ServerInstance{Config: cfg, Logger: newLogger(cfg, w)}
	defer func() {
		if err != nil && si != nil {
			si.Close(context.Background())
			si = nil
		}
	}()

	si.Tracer, err = tr.GetTracer(cfg.Tracing, si.Logger, w)
	if err != nil {
		si.Logger.Error("tracing registration failed", logging.Pairs{"detail": err})
		return si, err
	}

	client, err := registration.NewClient(cfg.Cache, si.Logger)
	if err != nil {
		si.Logger.Error("cache client registration failed", logging.Pairs{"detail": err})
		return si, err
	}
	if cfg.Cache.Enabled && !providers.IsDurable(cfg.Cache.Provider) {
		si.Logger.Warn("cache provider is not durable, artwork will not survive a restart",
			logging.Pairs{"cacheProvider": cfg.Cache.Provider})
	}
	si.Store, err = library.NewStore(cfg.Cache, client, si.Logger)
	if err != nil {
		client.Close()
		return si, err
	}

	si.Limiter, err = ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.MaxQueueSize)
	if err != nil {
		return si, err
	}
	si.Limiter.WithName("steam")

	si.HTTPClient = fetch.NewHTTPClient(cfg.Fetcher)
	si.Fetcher = fetch.New(si.HTTPClient, si.Tracer, si.Logger).WithUserAgent(cfg.Fetcher.UserAgent)
	si.Coordinator = artwork.NewCoordinator(
		artwork.LimitedDownload(si.Fetcher, si.Limiter, fetch.OptionsFrom(cfg.Fetcher)),
		cfg.Artwork, si.Logger)
	si.Loader = library.New(si.Store, si.Coordinator, si.Logger)

	if cfg.Metrics.Enabled {
		si.Metrics, err = metrics.NewListener(cfg.Metrics, si.Logger)
		if err != nil {
			si.Logger.Error("metrics listener failed", logging.Pairs{"detail": err})
			return si, err
		}
		go func(l *metrics.Listener) {
			if err := l.Serve(); err != nil {
				si.Logger.Error("metrics listener stopped", logging.Pairs{"detail": err})
			}
		}(si.Metrics)
	}

	si.Logger.Info("shelfcache instance ready", logging.Pairs{
		"server":        appinfo.Server,
		"cacheProvider": cfg.Cache.Provider,
		"cacheEnabled":  cfg.Cache.Enabled,
		"rps":           cfg.RateLimit.RequestsPerSecond,
	})
	return si, nil
}

func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	if cfg.Logging.LogFile == "" {
		return logging.StreamLogger(w, cfg.Logging.LogLevel)
	}
	return logging.New(cfg.Logging, cfg.Main.InstanceID)
}
