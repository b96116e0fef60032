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

// Package store provides a generic in-memory cache with per-entry TTL, LRU
// eviction bounded by entry count and estimated byte size, and debounced
// persistence of the whole cache to a storage Client.
package store

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/metrics"
	"github.com/trickstercache/shelfcache/pkg/cache/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
)

// DefaultEstimatedSize is the size assigned to a value that cannot be measured
const DefaultEstimatedSize int64 = 1024

// SnapshotKey is appended to the configured key prefix to form the storage
// key of the persisted snapshot
const SnapshotKey = "snapshot"

// ErrNilClient is returned when an enabled Store is constructed without a storage Client
var ErrNilClient = errors.New("cache store requires a storage client when enabled")

// Entry is a cached value and its bookkeeping
type Entry[T any] struct {
	Data           T
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Size           int64
}

// Stats is a point-in-time view of a Store's counters
type Stats struct {
	EntryCount    int
	TotalBytes    int64
	HitCount      int64
	MissCount     int64
	EvictionCount int64
}

type record[T any] struct {
	key string
	Entry[T]
}

// Store is a TTL and LRU bounded cache of T values. It is safe for
// concurrent use.
type Store[T any] struct {
	opts     *options.Options
	client   cache.Client
	logger   logging.Logger
	codec    Codec[T]
	estimate SizeEstimator[T]
	now      func() time.Time

	mtx        sync.Mutex
	entries    map[string]*list.Element
	lru        *list.List // front is least recently used
	totalBytes int64
	hits       int64
	misses     int64
	evictions  int64
	flush      flushState
	closed     bool

	// flushMtx serializes snapshot writers
	flushMtx sync.Mutex
}

// Option configures a Store at construction
type Option[T any] func(*Store[T])

// WithCodec sets the Codec used for snapshots and the default size estimate
func WithCodec[T any](c Codec[T]) Option[T] {
	return func(s *Store[T]) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithSizeEstimator replaces the default encoded-length size estimate
func WithSizeEstimator[T any](e SizeEstimator[T]) Option[T] {
	return func(s *Store[T]) {
		s.estimate = e
	}
}

// WithClock sets the time source used for creation, access and expiry
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store for the provided options, loading any snapshot that
// the client holds. A corrupt snapshot is discarded and the Store starts empty.
func New[T any](o *options.Options, client cache.Client, logger logging.Logger,
	opts ...Option[T]) (*Store[T], error) {
	if o == nil {
		o = options.New()
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("cache %q: %w", o.Name, err)
	}
	if err := o.Initialize(o.Name); err != nil {
		return nil, err
	}
	if o.Enabled && client == nil {
		return nil, ErrNilClient
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	s := &Store[T]{
		opts:    o,
		client:  client,
		logger:  logger,
		codec:   JSONCodec[T]{},
		now:     time.Now,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if o.Enabled {
		s.load()
	}
	metrics.ObserveCacheLimits(o.Name, o.Provider, o.MaxSizeBytes, o.MaxSizeObjects)
	return s, nil
}

// Name returns the configured cache name
func (s *Store[T]) Name() string {
	return s.opts.Name
}

// Enabled returns true if the Store caches values
func (s *Store[T]) Enabled() bool {
	return s.opts.Enabled
}

// Get returns the cached value for key if it is present and unexpired
func (s *Store[T]) Get(key string) (T, bool) {
	v, ls := s.Lookup(key)
	return v, ls == status.LookupStatusHit
}

// Lookup is Get with the detailed lookup status. A hit refreshes the
// entry's LastAccessedAt and LRU position; an expired entry is removed.
func (s *Store[T]) Lookup(key string) (T, status.LookupStatus) {
	var zero T
	if !s.opts.Enabled {
		s.mtx.Lock()
		s.misses++
		s.mtx.Unlock()
		metrics.ObserveCacheMiss(s.opts.Name, s.opts.Provider, status.LookupStatusBypass.String())
		return zero, status.LookupStatusBypass
	}
	now := s.now()
	s.mtx.Lock()
	el, ok := s.entries[key]
	if !ok {
		s.misses++
		s.mtx.Unlock()
		metrics.ObserveCacheMiss(s.opts.Name, s.opts.Provider, status.LookupStatusKeyMiss.String())
		return zero, status.LookupStatusKeyMiss
	}
	r := el.Value.(*record[T])
	if s.expired(&r.Entry, now) {
		s.removeElement(el)
		s.misses++
		s.mtx.Unlock()
		metrics.ObserveCacheMiss(s.opts.Name, s.opts.Provider, status.LookupStatusExpired.String())
		return zero, status.LookupStatusExpired
	}
	r.LastAccessedAt = now
	s.lru.MoveToBack(el)
	s.hits++
	v, size := r.Data, r.Size
	s.mtx.Unlock()
	metrics.ObserveCacheHit(s.opts.Name, s.opts.Provider, float64(size))
	return v, status.LookupStatusHit
}

// Peek returns a copy of the entry for key without touching its recency,
// the hit and miss counters, or expiry
func (s *Store[T]) Peek(key string) (Entry[T], bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	el, ok := s.entries[key]
	if !ok {
		return Entry[T]{}, false
	}
	return el.Value.(*record[T]).Entry, true
}

// Set inserts or replaces the value for key and schedules a debounced
// snapshot write. It is a no-op when the Store is disabled.
func (s *Store[T]) Set(key string, value T) {
	if !s.opts.Enabled {
		return
	}
	size := s.sizeOf(value)
	now := s.now()
	s.mtx.Lock()
	if el, ok := s.entries[key]; ok {
		r := el.Value.(*record[T])
		s.totalBytes -= r.Size
		r.Entry = Entry[T]{Data: value, CreatedAt: now, LastAccessedAt: now, Size: size}
		s.lru.MoveToBack(el)
	} else {
		s.entries[key] = s.lru.PushBack(&record[T]{
			key:   key,
			Entry: Entry[T]{Data: value, CreatedAt: now, LastAccessedAt: now, Size: size},
		})
	}
	s.totalBytes += size
	s.scheduleFlushLocked()
	count, total := len(s.entries), s.totalBytes
	s.mtx.Unlock()
	metrics.ObserveCacheSet(s.opts.Name, s.opts.Provider, float64(size))
	metrics.ObserveCacheSizeChange(s.opts.Name, s.opts.Provider, total, int64(count))
}

// Delete removes the entry for key and schedules a debounced snapshot write
func (s *Store[T]) Delete(key string) {
	if !s.opts.Enabled {
		return
	}
	s.mtx.Lock()
	el, ok := s.entries[key]
	if !ok {
		s.mtx.Unlock()
		return
	}
	s.removeElement(el)
	s.scheduleFlushLocked()
	count, total := len(s.entries), s.totalBytes
	s.mtx.Unlock()
	metrics.ObserveCacheDel(s.opts.Name, s.opts.Provider, 1)
	metrics.ObserveCacheSizeChange(s.opts.Name, s.opts.Provider, total, int64(count))
}

// Clear removes every entry and writes the empty snapshot immediately,
// cancelling any pending debounced write
func (s *Store[T]) Clear() error {
	s.mtx.Lock()
	n := len(s.entries)
	s.entries = make(map[string]*list.Element)
	s.lru.Init()
	s.totalBytes = 0
	s.cancelFlushLocked()
	s.mtx.Unlock()
	metrics.ObserveCacheDel(s.opts.Name, s.opts.Provider, float64(n))
	metrics.ObserveCacheSizeChange(s.opts.Name, s.opts.Provider, 0, 0)
	if !s.opts.Enabled {
		return nil
	}
	return s.persist()
}

// SaveImmediately cancels any pending debounced write and runs an
// eviction-then-persist cycle now
func (s *Store[T]) SaveImmediately() error {
	if !s.opts.Enabled {
		return nil
	}
	s.mtx.Lock()
	s.cancelFlushLocked()
	s.mtx.Unlock()
	return s.persist()
}

// Stats returns the current counters
func (s *Store[T]) Stats() Stats {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return Stats{
		EntryCount:    len(s.entries),
		TotalBytes:    s.totalBytes,
		HitCount:      s.hits,
		MissCount:     s.misses,
		EvictionCount: s.evictions,
	}
}

// Close saves the Store and closes its storage client. The Store must not be
// used after Close.
func (s *Store[T]) Close() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	s.closed = true
	s.cancelFlushLocked()
	s.mtx.Unlock()

	s.flushMtx.Lock()
	defer s.flushMtx.Unlock()
	var err error
	if s.opts.Enabled {
		err = s.persistLocked()
	}
	if s.client != nil {
		if cerr := s.client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Store[T]) snapshotKey() string {
	return s.opts.KeyPrefix + SnapshotKey
}

func (s *Store[T]) expired(e *Entry[T], now time.Time) bool {
	return now.Sub(e.CreatedAt) > s.opts.TTL
}

// removeElement must be called with mtx held
func (s *Store[T]) removeElement(el *list.Element) {
	r := s.lru.Remove(el).(*record[T])
	delete(s.entries, r.key)
	s.totalBytes -= r.Size
}

func (s *Store[T]) sizeOf(v T) (size int64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WarnOnce("size-estimate-panic."+s.opts.Name,
				"cache size estimate failed, using default",
				logging.Pairs{"cacheName": s.opts.Name, "detail": fmt.Sprint(r)})
			size = DefaultEstimatedSize
		}
	}()
	var err error
	if s.estimate != nil {
		size, err = s.estimate(v)
	} else {
		var b []byte
		b, err = s.codec.Marshal(v)
		size = int64(len(b))
	}
	if err != nil || size < 0 {
		return DefaultEstimatedSize
	}
	return size
}
