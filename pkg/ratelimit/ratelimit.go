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

// Package ratelimit paces operations to a fixed minimum interval between
// releases. Callers are delayed rather than rejected.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
)

// ErrInvalidRate is returned when the requests-per-second value does not
// yield a positive, representable interval
var ErrInvalidRate = errors.New("requests per second must be a finite value greater than zero")

// Limiter is a global pacing gate: no two callers are released by Wait less
// than Interval apart. It does not burst and is not FIFO fair.
type Limiter struct {
	name         string
	interval     time.Duration
	maxQueueSize int
	now          func() time.Time

	mtx  sync.Mutex
	last time.Time
}

// Status reports whether a caller could proceed right now
type Status struct {
	CanProceed bool
	WaitTime   time.Duration
}

// New returns a Limiter releasing at most requestsPerSecond callers per
// second. maxQueueSize is advisory and not enforced.
func New(requestsPerSecond float64, maxQueueSize int) (*Limiter, error) {
	interval, err := IntervalFor(requestsPerSecond)
	if err != nil {
		return nil, err
	}
	return &Limiter{
		name:         "default",
		interval:     interval,
		maxQueueSize: maxQueueSize,
		now:          time.Now,
	}, nil
}

// IntervalFor returns the release spacing for requestsPerSecond. NaN,
// infinite, non-positive and rates too small to express as a Duration are
// rejected.
func IntervalFor(requestsPerSecond float64) (time.Duration, error) {
	iv := float64(time.Second) / requestsPerSecond
	if !(requestsPerSecond > 0) || math.IsInf(requestsPerSecond, 0) ||
		!(iv >= 1 && iv < float64(math.MaxInt64)) {
		return 0, ErrInvalidRate
	}
	return time.Duration(iv), nil
}

// Name returns the name used to label the limiter's metrics
func (l *Limiter) Name() string {
	return l.name
}

// WithName sets the name used to label the limiter's metrics
func (l *Limiter) WithName(name string) *Limiter {
	l.name = name
	return l
}

// Interval returns the minimum spacing between releases
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// MaxQueueSize returns the advisory queue size
func (l *Limiter) MaxQueueSize() int {
	return l.maxQueueSize
}

// Wait blocks until the interval since the previous release has elapsed, then
// records the release. Concurrent waiters re-check after sleeping, so
// whichever wakes first claims the slot. It returns ctx.Err() if ctx ends
// first; a cancelled caller does not consume a slot.
func (l *Limiter) Wait(ctx context.Context) error {
	_, err := l.wait(ctx)
	return err
}

// wait returns the instant the caller was released
func (l *Limiter) wait(ctx context.Context) (time.Time, error) {
	start := l.now()
	for {
		l.mtx.Lock()
		now := l.now()
		remaining := l.remaining(now)
		if remaining <= 0 {
			l.last = now
			l.mtx.Unlock()
			metrics.RateLimitWaitDuration.WithLabelValues(l.name).Observe(now.Sub(start).Seconds())
			return now, nil
		}
		l.mtx.Unlock()

		t := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			t.Stop()
			return time.Time{}, ctx.Err()
		case <-t.C:
		}
	}
}

// Status reports, without waiting, whether a call could proceed now and if
// not how long until it could
func (l *Limiter) Status() Status {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	remaining := l.remaining(l.now())
	if remaining <= 0 {
		return Status{CanProceed: true}
	}
	return Status{WaitTime: remaining}
}

// remaining must be called with mtx held
func (l *Limiter) remaining(now time.Time) time.Duration {
	if l.last.IsZero() {
		return 0
	}
	return l.interval - now.Sub(l.last)
}

// Operation is a context-aware call that can be rate limited
type Operation[A, R any] func(context.Context, A) (R, error)

// Limited returns op wrapped so that each invocation first waits on l. The
// result and error of op are returned unchanged.
func Limited[A, R any](l *Limiter, op Operation[A, R]) Operation[A, R] {
	return func(ctx context.Context, arg A) (R, error) {
		if err := l.Wait(ctx); err != nil {
			var zero R
			return zero, err
		}
		return op(ctx, arg)
	}
}
