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

// Package stdout provides a Stdout Tracer
package stdout

import (
	"io"

	"github.com/trickstercache/shelfcache/pkg/observability/tracing"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing/options"

	"go.opentelemetry.io/otel/attribute"
	stdout "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// New returns a new Stdout Tracer that writes spans to w
func New(opts *options.Options, w io.Writer) (*tracing.Tracer, error) {
	if opts == nil {
		opts = options.New()
		opts.Provider = "stdout"
	}

	o := []stdout.Option{}
	if w != nil {
		o = append(o, stdout.WithWriter(w))
	}
	if opts.StdOutOptions != nil && opts.StdOutOptions.PrettyPrint {
		o = append(o, stdout.WithPrettyPrint())
	}

	exp, err := stdout.New(o...)
	if err != nil {
		return nil, err
	}

	var sampler sdktrace.Sampler
	switch opts.SampleRate {
	case 0:
		sampler = sdktrace.NeverSample()
	case 1:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(opts.SampleRate)
	}

	tags := []attribute.KeyValue{attribute.String("service.name", opts.ServiceName)}
	for k, v := range opts.Tags {
		tags = append(tags, attribute.String(k, v))
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(resource.NewWithAttributes("", tags...)),
	)

	return &tracing.Tracer{
		Name:         opts.Name,
		Tracer:       tp.Tracer(opts.Name),
		ShutdownFunc: tp.Shutdown,
		Options:      opts,
	}, nil
}
