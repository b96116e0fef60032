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

// Package fetch downloads single image resources with timeout, content type
// validation and optional degrade-to-nil failure handling
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/httptrace"
	"slices"
	"strings"
	"time"

	"github.com/trickstercache/shelfcache/pkg/fetch/options"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx responses
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrContentType is returned when the response media type is not allowed
	ErrContentType = errors.New("content type not allowed")
	// ErrTooLarge is returned when the response body exceeds MaxBodyBytes
	ErrTooLarge = errors.New("response body too large")
)

// Blob is a downloaded resource
type Blob struct {
	ContentType string
	Data        []byte
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options control a single Download
type Options struct {
	// Timeout bounds the download; 0 uses only the caller's context
	Timeout time.Duration
	// AllowedContentTypes is the media type allowlist; empty uses the default image types
	AllowedContentTypes []string
	// EnableFallback returns nil, nil on failure after calling OnImageError
	EnableFallback bool
	// MaxBodyBytes caps the body size; 0 is unlimited
	MaxBodyBytes int64
	// OnImageLoaded is called with each successful download
	OnImageLoaded func(locator string, b *Blob)
	// OnImageError is called with each failed download when EnableFallback is set
	OnImageError func(locator string, err error)
}

// OptionsFrom returns the per-download Options described by the configuration
func OptionsFrom(o *options.Options) Options {
	if o == nil {
		o = options.New()
	}
	return Options{
		Timeout:             o.Timeout,
		AllowedContentTypes: o.AllowedContentTypes,
		EnableFallback:      o.EnableFallback,
		MaxBodyBytes:        o.MaxBodyBytes,
	}
}

// NewHTTPClient returns an *http.Client configured for artwork origins
func NewHTTPClient(o *options.Options) *http.Client {
	if o == nil {
		o = options.New()
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{KeepAlive: o.KeepAliveTimeout}).DialContext,
			MaxIdleConns:        o.MaxIdleConns,
			MaxIdleConnsPerHost: o.MaxIdleConns,
			Proxy:               http.ProxyFromEnvironment,
		},
	}
}

// Fetcher downloads resources. Concurrent downloads of the same locator share
// one request.
type Fetcher struct {
	client    Doer
	tracer    *tracing.Tracer
	logger    logging.Logger
	userAgent string
	sf        singleflight.Group
}

// New returns a Fetcher that issues requests through client
func New(client Doer, tracer *tracing.Tracer, logger logging.Logger) *Fetcher {
	if client == nil {
		client = NewHTTPClient(nil)
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Fetcher{
		client:    client,
		tracer:    tracer,
		logger:    logger,
		userAgent: options.DefaultUserAgent,
	}
}

// WithUserAgent sets the User-Agent sent with each request
func (f *Fetcher) WithUserAgent(ua string) *Fetcher {
	if ua != "" {
		f.userAgent = ua
	}
	return f
}

// Download retrieves the resource at locator. On failure it returns the
// error, or when o.EnableFallback is set, calls o.OnImageError and returns
// nil, nil. Only callers with the same locator and validation options are
// coalesced; they share the first caller's context.
func (f *Fetcher) Download(ctx context.Context, locator string, o Options) (*Blob, error) {
	start := time.Now()
	v, err, _ := f.sf.Do(flightKey(locator, o), func() (any, error) {
		return f.download(ctx, locator, o)
	})
	var b *Blob
	if err == nil {
		b = v.(*Blob)
	}
	outcome := "success"
	if err != nil {
		outcome = failureOutcome(err)
	}
	metrics.FetchRequests.WithLabelValues(outcome).Inc()
	metrics.FetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		f.logger.Debug("artwork download failed",
			logging.Pairs{"locator": locator, "error": err, "fallback": o.EnableFallback})
		if !o.EnableFallback {
			return nil, err
		}
		if o.OnImageError != nil {
			o.OnImageError(locator, err)
		}
		return nil, nil
	}
	if o.OnImageLoaded != nil {
		o.OnImageLoaded(locator, b)
	}
	return b, nil
}

func (f *Fetcher) download(ctx context.Context, locator string, o Options) (*Blob, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	ctx, span := tracing.NewChildSpan(ctx, f.tracer, "download",
		attribute.String("url", locator))
	if span != nil {
		defer span.End()
		ctx = httptrace.WithClientTrace(ctx, otelhttptrace.NewClientTrace(ctx))
	}

	b, code, err := f.get(ctx, locator, o)
	if span != nil {
		if code > 0 {
			span.SetAttributes(attribute.Int("http.status_code", code))
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(tracing.HTTPToCode(code), "")
		}
	}
	return b, err
}

func (f *Fetcher) get(ctx context.Context, locator string, o Options) (*Blob, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", strings.Join(allowed(o), ", "))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || !slices.ContainsFunc(allowed(o), func(a string) bool {
		return strings.EqualFold(a, mt)
	}) {
		return nil, resp.StatusCode, fmt.Errorf("%w: %q", ErrContentType, ct)
	}

	var r io.Reader = resp.Body
	if o.MaxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, o.MaxBodyBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if o.MaxBodyBytes > 0 && int64(len(data)) > o.MaxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, o.MaxBodyBytes)
	}
	metrics.FetchBytes.Add(float64(len(data)))
	return &Blob{ContentType: strings.ToLower(mt), Data: data}, resp.StatusCode, nil
}

// flightKey identifies a download by locator and the options that decide
// whether its response is acceptable
func flightKey(locator string, o Options) string {
	types := make([]string, 0, len(allowed(o)))
	for _, t := range allowed(o) {
		types = append(types, strings.ToLower(t))
	}
	slices.Sort(types)
	types = slices.Compact(types)
	return fmt.Sprintf("%s\x00%d\x00%d\x00%s", locator, o.Timeout, o.MaxBodyBytes,
		strings.Join(types, ","))
}

func allowed(o Options) []string {
	if len(o.AllowedContentTypes) == 0 {
		return options.DefaultAllowedContentTypes
	}
	return o.AllowedContentTypes
}

func failureOutcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrContentType):
		return "content_type"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	default:
		return "error"
	}
}
