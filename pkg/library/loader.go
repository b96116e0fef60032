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

package library

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
	"github.com/trickstercache/shelfcache/pkg/cache/store"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
)

// State is the phase of a load
type State int32

const (
	// StateIdle means no load has started
	StateIdle State = iota
	// StatePrioritizing means the game list is being ordered
	StatePrioritizing
	// StateLoading means games are being resolved
	StateLoading
	// StateDone means the most recent load finished or was cancelled
	StateDone
)

var stateNames = []string{"idle", "prioritizing", "loading", "done"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// LoadOptions control a single LoadProgressively
type LoadOptions struct {
	// MaxGames limits how many games are loaded; 0 loads all
	MaxGames int
	// Priority orders the games; nil uses ByPlaytime
	Priority Priority
	// SkipCachingEmpty does not cache a fetched result with no blobs
	SkipCachingEmpty bool
	// OnProgress is called after each game with the count processed and the total
	OnProgress func(current, total int)
	// OnGameLoaded is called with each game, in priority order
	OnGameLoaded func(EnrichedGame)
	// Fetch is passed to the artwork coordinator
	Fetch artwork.FetchOptions
}

// Loader resolves artwork for a library of games. One load runs at a time.
type Loader struct {
	store       *store.Store[artwork.Result]
	coordinator *artwork.Coordinator
	logger      logging.Logger

	runMtx sync.Mutex
	state  atomic.Int32
}

// NewStore returns an artwork cache Store that encodes results with msgp
func NewStore(o *options.Options, client cache.Client, logger logging.Logger) (*store.Store[artwork.Result], error) {
	return store.New(o, client, logger,
		store.WithCodec[artwork.Result](store.MsgpCodec[artwork.Result, *artwork.Result]{}))
}

// New returns a Loader that caches in s and fetches with c
func New(s *store.Store[artwork.Result], c *artwork.Coordinator, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Loader{store: s, coordinator: c, logger: logger}
}

// State returns the phase of the current or most recent load
func (l *Loader) State() State {
	return State(l.state.Load())
}

// LoadProgressively resolves each game in priority order, up to MaxGames.
// A cached game skips the network; an uncached game is fetched and then
// cached before the next game starts. Callbacks fire in priority order.
// ctx is checked between games; on cancellation the games loaded so far are
// returned with ctx.Err().
func (l *Loader) LoadProgressively(ctx context.Context, games []Game, o LoadOptions) ([]EnrichedGame, error) {
	l.runMtx.Lock()
	defer l.runMtx.Unlock()
	defer l.state.Store(int32(StateDone))

	l.state.Store(int32(StatePrioritizing))
	priority := o.Priority
	if priority == nil {
		priority = ByPlaytime
	}
	ordered := priority(games)
	total := len(ordered)
	if o.MaxGames > 0 && o.MaxGames < total {
		total = o.MaxGames
	}

	l.state.Store(int32(StateLoading))
	l.logger.Info("library load starting", logging.Pairs{"games": len(games), "loading": total})
	metrics.LoaderProgress.Set(0)
	out := make([]EnrichedGame, 0, total)
	var hits int
	for i, g := range ordered[:total] {
		if err := ctx.Err(); err != nil {
			l.logger.Info("library load cancelled",
				logging.Pairs{"loaded": len(out), "total": total, "error": err})
			return out, err
		}
		eg := l.resolve(ctx, g, o)
		if eg.Status == status.LookupStatusHit {
			hits++
		}
		metrics.LoaderGames.WithLabelValues(eg.Status.String()).Inc()
		metrics.LoaderProgress.Set(float64(i+1) / float64(total))
		out = append(out, eg)
		if o.OnGameLoaded != nil {
			o.OnGameLoaded(eg)
		}
		if o.OnProgress != nil {
			o.OnProgress(i+1, total)
		}
	}
	l.logger.Info("library load complete",
		logging.Pairs{"loaded": len(out), "cacheHits": hits})
	return out, nil
}

func (l *Loader) resolve(ctx context.Context, g Game, o LoadOptions) EnrichedGame {
	key := CacheKey(g.ID)
	r, ls := l.store.Lookup(key)
	if ls == status.LookupStatusHit {
		return EnrichedGame{Game: g, Artwork: r, Status: ls}
	}
	// a game in flight completes even if ctx is cancelled mid-fetch
	r = l.coordinator.FetchAll(context.WithoutCancel(ctx), g.ArtworkLocators, o.Fetch)
	if r.Count() > 0 || !o.SkipCachingEmpty {
		l.store.Set(key, r)
	}
	l.logger.Debug("game artwork fetched",
		logging.Pairs{"gameID": g.ID, "kinds": r.Count(), "lookup": ls.String()})
	return EnrichedGame{Game: g, Artwork: r, Status: ls}
}
