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

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/fetch/options"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func newOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	})
	mux.HandleFunc("/charset.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "IMAGE/JPEG; charset=binary")
		w.Write([]byte("jpeg"))
	})
	mux.HandleFunc("/error.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found</html>"))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	})
	mux.HandleFunc("/big.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, 2048))
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestDownload(t *testing.T) {
	s := newOrigin(t)
	f := New(s.Client(), nil, nil)

	var loaded []string
	o := Options{
		Timeout: time.Second,
		OnImageLoaded: func(locator string, b *Blob) {
			loaded = append(loaded, locator)
		},
	}
	b, err := f.Download(context.Background(), s.URL+"/ok.png", o)
	require.NoError(t, err)
	require.Equal(t, "image/png", b.ContentType)
	require.Equal(t, pngBytes, b.Data)
	require.Equal(t, []string{s.URL + "/ok.png"}, loaded)

	b, err = f.Download(context.Background(), s.URL+"/charset.jpg", o)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", b.ContentType)
}

func TestDownloadFailures(t *testing.T) {
	s := newOrigin(t)
	f := New(s.Client(), nil, nil)

	tests := []struct {
		path string
		err  error
	}{
		{"/error.html", ErrContentType},
		{"/missing.png", ErrUnexpectedStatus},
		{"/slow.png", context.DeadlineExceeded},
		{"/big.png", ErrTooLarge},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			o := Options{Timeout: 100 * time.Millisecond, MaxBodyBytes: 1024}
			b, err := f.Download(context.Background(), s.URL+test.path, o)
			require.Nil(t, b)
			require.ErrorIs(t, err, test.err)

			var gotErr error
			var loadedCalled bool
			o.EnableFallback = true
			o.OnImageError = func(_ string, err error) { gotErr = err }
			o.OnImageLoaded = func(string, *Blob) { loadedCalled = true }
			b, err = f.Download(context.Background(), s.URL+test.path, o)
			require.NoError(t, err)
			require.Nil(t, b)
			require.ErrorIs(t, gotErr, test.err)
			require.False(t, loadedCalled)
		})
	}
}

func TestDownloadNetworkError(t *testing.T) {
	s := newOrigin(t)
	url := s.URL + "/ok.png"
	s.Close()
	f := New(nil, nil, nil)
	_, err := f.Download(context.Background(), url, Options{Timeout: time.Second})
	require.Error(t, err)

	b, err := f.Download(context.Background(), url, Options{Timeout: time.Second, EnableFallback: true})
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestDownloadCustomAllowlist(t *testing.T) {
	s := newOrigin(t)
	f := New(s.Client(), nil, nil)
	o := Options{AllowedContentTypes: []string{"text/html"}}
	b, err := f.Download(context.Background(), s.URL+"/error.html", o)
	require.NoError(t, err)
	require.Equal(t, "text/html", b.ContentType)
	_, err = f.Download(context.Background(), s.URL+"/ok.png", o)
	require.ErrorIs(t, err, ErrContentType)
}

type countingDoer struct {
	calls   atomic.Int64
	release chan struct{}
	next    Doer
}

func (d *countingDoer) Do(r *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	<-d.release
	return d.next.Do(r)
}

func TestDownloadCoalesces(t *testing.T) {
	s := newOrigin(t)
	d := &countingDoer{release: make(chan struct{}), next: s.Client()}
	f := New(d, nil, nil)

	const n = 5
	var wg sync.WaitGroup
	results := make([]*Blob, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.Download(context.Background(), s.URL+"/ok.png", Options{})
		}(i)
	}
	require.Eventually(t, func() bool { return d.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(d.release)
	wg.Wait()
	require.Equal(t, int64(1), d.calls.Load())
	for _, b := range results {
		require.NotNil(t, b)
	}
}

func TestDownloadCoalescesPerOptions(t *testing.T) {
	s := newOrigin(t)
	d := &countingDoer{release: make(chan struct{}), next: s.Client()}
	f := New(d, nil, nil)

	var wg sync.WaitGroup
	var pngBlob, jpegBlob *Blob
	var pngErr, jpegErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		pngBlob, pngErr = f.Download(context.Background(), s.URL+"/ok.png", Options{})
	}()
	require.Eventually(t, func() bool { return d.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	go func() {
		defer wg.Done()
		jpegBlob, jpegErr = f.Download(context.Background(), s.URL+"/ok.png",
			Options{AllowedContentTypes: []string{"image/jpeg"}})
	}()
	require.Eventually(t, func() bool { return d.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(d.release)
	wg.Wait()

	require.NoError(t, pngErr)
	require.NotNil(t, pngBlob)
	require.ErrorIs(t, jpegErr, ErrContentType)
	require.Nil(t, jpegBlob)
}

func TestFlightKey(t *testing.T) {
	base := flightKey("http://x/a.png", Options{})
	require.Equal(t, base, flightKey("http://x/a.png",
		Options{AllowedContentTypes: []string{"image/png", "image/JPEG", "image/gif", "image/webp", "image/avif"}}))
	require.NotEqual(t, base, flightKey("http://x/a.png", Options{Timeout: time.Second}))
	require.NotEqual(t, base, flightKey("http://x/a.png", Options{MaxBodyBytes: 10}))
	require.NotEqual(t, base, flightKey("http://x/b.png", Options{}))
}

func TestDownloadTraced(t *testing.T) {
	s := newOrigin(t)
	tr := &tracing.Tracer{Tracer: noop.NewTracerProvider().Tracer("test")}
	f := New(s.Client(), tr, nil).WithUserAgent("test-agent")
	b, err := f.Download(context.Background(), s.URL+"/ok.png", Options{})
	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestOptionsFrom(t *testing.T) {
	o := OptionsFrom(nil)
	require.Equal(t, options.DefaultTimeout, o.Timeout)
	require.True(t, o.EnableFallback)
	require.Equal(t, options.DefaultMaxBodyBytes, o.MaxBodyBytes)
	require.Len(t, o.AllowedContentTypes, 5)
	require.NoError(t, options.New().Validate())
	require.ErrorIs(t, (&options.Options{}).Validate(), options.ErrInvalidTimeout)
	require.True(t, errors.Is((&options.Options{Timeout: 1, MaxBodyBytes: -1}).Validate(),
		options.ErrInvalidMaxBodyBytes))
}
