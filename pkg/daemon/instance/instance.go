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

// Package instance holds the components of a running shelfcache instance
package instance

import (
	"context"
	"errors"
	"net/http"

	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/cache/store"
	"github.com/trickstercache/shelfcache/pkg/config"
	"github.com/trickstercache/shelfcache/pkg/fetch"
	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing"
	"github.com/trickstercache/shelfcache/pkg/ratelimit"
	"github.com/trickstercache/shelfcache/pkg/steam"
)

// ServerInstance is the set of components built from one Config. The Store
// owns the cache client and closes it.
type ServerInstance struct {
	Config      *config.Config
	Logger      logging.Logger
	Tracer      *tracing.Tracer
	HTTPClient  *http.Client
	Store       *store.Store[artwork.Result]
	Limiter     *ratelimit.Limiter
	Fetcher     *fetch.Fetcher
	Coordinator *artwork.Coordinator
	Loader      *library.Loader
	Metrics     *metrics.Listener
}

// Source returns the game source described by the source config. Requests
// share the instance rate limiter.
func (si *ServerInstance) Source() (steam.Source, error) {
	return steam.New(si.Config.Source, si.HTTPClient, si.Limiter, si.Tracer, si.Logger)
}

// Close flushes the cache and stops the metrics listener and tracer. The
// logger is closed last.
func (si *ServerInstance) Close(ctx context.Context) error {
	var errs []error
	if si.Metrics != nil {
		if err := si.Metrics.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if si.Store != nil {
		if err := si.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if si.Tracer != nil {
		if err := si.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if si.Logger != nil {
		if err != nil {
			si.Logger.Error("instance shutdown failed", logging.Pairs{"detail": err})
		}
		si.Logger.Close()
	}
	return err
}
