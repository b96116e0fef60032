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

package ratelimit

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/ratelimit/options"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, rps := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1), 1e-12, 1e10} {
		_, err := New(rps, 10)
		require.ErrorIs(t, err, ErrInvalidRate, "rps %v", rps)
		require.ErrorIs(t, (&options.Options{RequestsPerSecond: rps}).Validate(),
			options.ErrInvalidRate, "rps %v", rps)
	}

	l, err := New(4, 10)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, l.Interval())
	require.Equal(t, 10, l.MaxQueueSize())
}

func TestSequentialSpacing(t *testing.T) {
	const n = 5
	l, err := New(20, 0) // 50ms
	require.NoError(t, err)

	var released []time.Time
	for range n {
		at, err := l.wait(context.Background())
		require.NoError(t, err)
		released = append(released, at)
	}
	require.GreaterOrEqual(t, released[n-1].Sub(released[0]), (n-1)*l.Interval())
}

func TestConcurrentSpacing(t *testing.T) {
	const n = 6
	l, err := New(25, 0) // 40ms
	require.NoError(t, err)

	var mtx sync.Mutex
	var released []time.Time
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at, err := l.wait(context.Background())
			require.NoError(t, err)
			mtx.Lock()
			released = append(released, at)
			mtx.Unlock()
		}()
	}
	wg.Wait()
	sort.Slice(released, func(i, j int) bool { return released[i].Before(released[j]) })
	for i := 1; i < n; i++ {
		require.GreaterOrEqual(t, released[i].Sub(released[i-1]), l.Interval())
	}
}

func TestStatus(t *testing.T) {
	l, err := New(1, 0)
	require.NoError(t, err)
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	require.Equal(t, Status{CanProceed: true}, l.Status())
	require.NoError(t, l.Wait(context.Background()))

	now = now.Add(400 * time.Millisecond)
	st := l.Status()
	require.False(t, st.CanProceed)
	require.Equal(t, 600*time.Millisecond, st.WaitTime)

	now = now.Add(600 * time.Millisecond)
	require.True(t, l.Status().CanProceed)
}

func TestWaitCancelled(t *testing.T) {
	l, err := New(0.5, 0) // 2s
	require.NoError(t, err)
	require.NoError(t, l.Wait(context.Background()))
	last := l.last

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
	require.Equal(t, last, l.last)
}

func TestLimited(t *testing.T) {
	l, err := New(50, 0)
	require.NoError(t, err)
	errBoom := errors.New("boom")

	double := Limited[int, int](l, func(_ context.Context, n int) (int, error) {
		if n < 0 {
			return 0, errBoom
		}
		return n * 2, nil
	})

	v, err := double(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	_, err = double(context.Background(), -1)
	require.ErrorIs(t, err, errBoom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = double(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}
