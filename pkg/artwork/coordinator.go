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

package artwork

import (
	"context"
	"time"

	"github.com/trickstercache/shelfcache/pkg/artwork/options"
	"github.com/trickstercache/shelfcache/pkg/fetch"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/ratelimit"
)

// Download fetches a single locator. A nil blob with a nil error is a
// degraded failure.
type Download = ratelimit.Operation[string, *fetch.Blob]

// FetchOptions control a single FetchAll
type FetchOptions struct {
	// OnKindFetched is called after each attempted kind, in kind order
	OnKindFetched func(k Kind, b *fetch.Blob, err error)
}

// Coordinator fetches every artwork kind for a game, one at a time
type Coordinator struct {
	download Download
	delay    time.Duration
	logger   logging.Logger
}

// NewCoordinator returns a Coordinator that downloads through download,
// which is expected to already be rate limited
func NewCoordinator(download Download, o *options.Options, logger logging.Logger) *Coordinator {
	if o == nil {
		o = options.New()
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Coordinator{
		download: download,
		delay:    o.InterRequestDelay,
		logger:   logger,
	}
}

// LimitedDownload adapts f into a Download paced by l
func LimitedDownload(f *fetch.Fetcher, l *ratelimit.Limiter, fo fetch.Options) Download {
	return ratelimit.Limited[string, *fetch.Blob](l, func(ctx context.Context, locator string) (*fetch.Blob, error) {
		return f.Download(ctx, locator, fo)
	})
}

// FetchAll downloads each present locator in kind order, pausing after every
// download. A failed kind leaves its field nil; FetchAll never fails. When
// ctx ends no further kinds are attempted.
func (c *Coordinator) FetchAll(ctx context.Context, set LocatorSet, o FetchOptions) Result {
	var r Result
	for _, k := range Kinds {
		locator := set.Get(k)
		if locator == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		b, err := c.download(ctx, locator)
		if err != nil {
			c.logger.Debug("artwork kind failed",
				logging.Pairs{"kind": k.String(), "locator": locator, "error": err})
			b = nil
		}
		r.Set(k, b)
		if o.OnKindFetched != nil {
			o.OnKindFetched(k, b, err)
		}
		if !sleep(ctx, c.delay) {
			break
		}
	}
	return r
}

// sleep returns false if ctx ended before d elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
