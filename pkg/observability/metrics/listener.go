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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/metrics/options"
	"github.com/trickstercache/shelfcache/pkg/observability/pprof"

	"golang.org/x/net/netutil"
)

// Listener serves /metrics (and optionally /debug/pprof) over HTTP
type Listener struct {
	server   *http.Server
	listener net.Listener
	logger   logging.Logger
}

// NewListener binds the metrics listener described by o. The listener does
// not accept connections until Serve is called.
func NewListener(o *options.Options, logger logging.Logger) (*Listener, error) {
	if o == nil {
		o = options.New()
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	addr := fmt.Sprintf("%s:%d", o.ListenAddress, o.ListenPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	if o.MaxConnections > 0 {
		l = netutil.LimitListener(l, o.MaxConnections)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	if o.EnablePprof {
		pprof.RegisterRoutes(mux, logger)
	}

	return &Listener{
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		listener: l,
		logger:   logger,
	}, nil
}

// Addr returns the bound address of the listener
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Serve accepts connections until Shutdown is called
func (l *Listener) Serve() error {
	l.logger.Info("metrics http endpoint starting", logging.Pairs{"address": l.listener.Addr().String()})
	err := l.server.Serve(l.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the listener
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.server.Shutdown(ctx)
}
