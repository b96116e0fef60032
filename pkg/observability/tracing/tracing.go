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

// Package tracing provides distributed tracing services to shelfcache
package tracing

import (
	"context"
	"net/http"

	"github.com/trickstercache/shelfcache/pkg/observability/tracing/options"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ShutdownFunc defines a function used to Flush a Tracer
type ShutdownFunc func(context.Context) error

// Tracer is a Tracer object used by shelfcache
type Tracer struct {
	trace.Tracer
	Name         string
	ShutdownFunc ShutdownFunc
	Options      *options.Options
}

// Tags represents a collection of Tags
type Tags map[string]string

// HTTPToCode translates an HTTP status code into a span status code
func HTTPToCode(status int) codes.Code {
	switch {
	case status < http.StatusBadRequest:
		return codes.Ok
	default:
		return codes.Error
	}
}

// Merge merges t2, when not nil, into t
func (t Tags) Merge(t2 Tags) {
	for k, v := range t2 {
		t[k] = v
	}
}

// MergeAttr merges the provided attributes into the Tags map
func (t Tags) MergeAttr(attr []attribute.KeyValue) {
	for _, v := range attr {
		t[string(v.Key)] = v.Value.Emit()
	}
}

// ToAttr returns the Tags map as an Attributes List
func (t Tags) ToAttr() []attribute.KeyValue {
	attr := make([]attribute.KeyValue, 0, len(t))
	for k, v := range t {
		attr = append(attr, attribute.String(k, v))
	}
	return attr
}

// NewChildSpan returns the context with a new Span situated as the child of
// any span already in ctx. A nil Tracer yields the unchanged context and a
// nil span.
func NewChildSpan(ctx context.Context, tr *Tracer,
	spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tr == nil || tr.Tracer == nil {
		return ctx, nil
	}
	if tr.Options != nil && len(tr.Options.Tags) > 0 {
		attrs = append(attrs, Tags(tr.Options.Tags).ToAttr()...)
	}
	return tr.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// Shutdown flushes and stops the Tracer, when it has a ShutdownFunc
func (tr *Tracer) Shutdown(ctx context.Context) error {
	if tr == nil || tr.ShutdownFunc == nil {
		return nil
	}
	return tr.ShutdownFunc(ctx)
}
