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

// Package registration builds the configured tracer
package registration

import (
	"fmt"
	"io"

	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing/exporters/stdout"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing/options"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing/providers"

	"go.opentelemetry.io/otel/trace/noop"
)

// GetTracer returns a *Tracer based on the provided options. Spans from the
// stdout provider are written to w.
func GetTracer(opts *options.Options, logger logging.Logger,
	w io.Writer) (*tracing.Tracer, error) {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	if opts == nil {
		logger.Info("nil tracing config, using noop tracer", nil)
		return newNoop(options.New()), nil
	}
	p, ok := providers.Names[opts.Provider]
	if !ok {
		return nil, fmt.Errorf("invalid tracer type [%s]", opts.Provider)
	}
	logger.Info("tracer registration",
		logging.Pairs{
			"provider":    opts.Provider,
			"serviceName": opts.ServiceName,
			"sampleRate":  opts.SampleRate,
		},
	)
	switch p {
	case providers.Stdout:
		return stdout.New(opts, w)
	default:
		return newNoop(opts), nil
	}
}

func newNoop(opts *options.Options) *tracing.Tracer {
	return &tracing.Tracer{
		Name:    opts.Name,
		Tracer:  noop.NewTracerProvider().Tracer(opts.Name),
		Options: opts,
	}
}
