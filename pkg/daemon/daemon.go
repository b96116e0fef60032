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

// Package daemon runs shelfcache commands against a configured instance
package daemon

import (
	"context"
	"io"
	"sync"

	"github.com/trickstercache/shelfcache/pkg/config"
	"github.com/trickstercache/shelfcache/pkg/daemon/instance"
	"github.com/trickstercache/shelfcache/pkg/daemon/setup"
	"github.com/trickstercache/shelfcache/pkg/daemon/signaling"
	"github.com/trickstercache/shelfcache/pkg/errors"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
)

// RunFunc performs one command with a ready instance
type RunFunc func(ctx context.Context, si *instance.ServerInstance) error

var mtx sync.Mutex
var running bool

// Run loads the configuration, builds an instance and calls fn with a
// context cancelled on SIGINT or SIGTERM. SIGHUP flushes the cache. The
// instance is closed, flushing the cache, before Run returns.
func Run(ctx context.Context, flags *config.Flags, w io.Writer, fn RunFunc) error {
	mtx.Lock()
	if running {
		mtx.Unlock()
		return errors.ErrAlreadyRunning
	}
	running = true
	mtx.Unlock()
	defer func() {
		mtx.Lock()
		running = false
		mtx.Unlock()
	}()

	cfg, err := setup.LoadAndValidate(flags)
	if err != nil {
		return err
	}
	si, err := setup.ApplyConfig(cfg, w)
	if err != nil {
		return err
	}

	ctx, cancel := signaling.Context(ctx, func() {
		si.Logger.Info("flushing cache", logging.Pairs{"source": "sighup"})
		if err := si.Store.SaveImmediately(); err != nil {
			si.Logger.Error("cache flush failed", logging.Pairs{"detail": err})
		}
	})
	defer cancel()

	runErr := fn(ctx, si)

	sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Main.ShutdownTimeout)
	defer scancel()
	if err := si.Close(sctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
