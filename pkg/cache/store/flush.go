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

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/metrics"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
	"github.com/trickstercache/shelfcache/pkg/encoding"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
)

type flushPhase int

const (
	flushIdle flushPhase = iota
	flushPending
)

// flushState is the debounce state machine. Every schedule or cancel bumps
// generation, so a timer that fires for an older generation does nothing.
type flushState struct {
	phase      flushPhase
	deadline   time.Time
	generation uint64
	timer      *time.Timer
}

// scheduleFlushLocked (re)arms the trailing debounce timer. mtx must be held.
func (s *Store[T]) scheduleFlushLocked() {
	if s.closed {
		return
	}
	if s.flush.timer != nil {
		s.flush.timer.Stop()
	}
	s.flush.generation++
	gen := s.flush.generation
	s.flush.phase = flushPending
	s.flush.deadline = s.now().Add(s.opts.FlushDebounce)
	s.flush.timer = time.AfterFunc(s.opts.FlushDebounce, func() {
		s.debouncedFlush(gen)
	})
}

// cancelFlushLocked drops any pending debounced write. mtx must be held.
func (s *Store[T]) cancelFlushLocked() {
	if s.flush.timer != nil {
		s.flush.timer.Stop()
		s.flush.timer = nil
	}
	s.flush.generation++
	s.flush.phase = flushIdle
	s.flush.deadline = time.Time{}
}

func (s *Store[T]) debouncedFlush(gen uint64) {
	s.mtx.Lock()
	if s.closed || s.flush.phase != flushPending || s.flush.generation != gen {
		s.mtx.Unlock()
		return
	}
	s.flush.phase = flushIdle
	s.flush.deadline = time.Time{}
	s.flush.timer = nil
	s.mtx.Unlock()
	s.flushIfOpen()
}

// flushIfOpen persists unless Close has begun. Close holds flushMtx through
// its final write and the client close, so a timer that fired just before
// Close cannot write to a closed client.
func (s *Store[T]) flushIfOpen() {
	s.flushMtx.Lock()
	defer s.flushMtx.Unlock()
	s.mtx.Lock()
	closed := s.closed
	s.mtx.Unlock()
	if closed {
		return
	}
	if err := s.persistLocked(); err != nil {
		s.logger.Error("cache snapshot write failed",
			logging.Pairs{"cacheName": s.opts.Name, "error": err})
	}
}

// evictLocked purges expired entries, then evicts least recently used
// entries until the entry count is at MaxSizeObjects and, when the total
// size is over MaxSizeBytes, until it is at or below EvictionTarget of it.
// mtx must be held.
func (s *Store[T]) evictLocked(now time.Time) (expired, byCount, bySize int) {
	for el := s.lru.Front(); el != nil; {
		next := el.Next()
		if s.expired(&el.Value.(*record[T]).Entry, now) {
			s.removeElement(el)
			expired++
		}
		el = next
	}
	if limit := s.opts.MaxSizeObjects; limit > 0 {
		for s.lru.Len() > limit {
			s.removeElement(s.lru.Front())
			byCount++
		}
	}
	if limit := s.opts.MaxSizeBytes; limit > 0 && s.totalBytes > limit {
		target := int64(float64(limit) * s.opts.EvictionTarget)
		for s.totalBytes > target && s.lru.Len() > 0 {
			s.removeElement(s.lru.Front())
			bySize++
		}
	}
	s.evictions += int64(byCount + bySize)
	return
}

// persist runs one eviction-then-write cycle
func (s *Store[T]) persist() error {
	s.flushMtx.Lock()
	defer s.flushMtx.Unlock()
	return s.persistLocked()
}

// persistLocked is persist with flushMtx already held
func (s *Store[T]) persistLocked() error {
	start := time.Now()

	s.mtx.Lock()
	expired, byCount, bySize := s.evictLocked(s.now())
	items := make([]record[T], 0, s.lru.Len())
	for el := s.lru.Front(); el != nil; el = el.Next() {
		items = append(items, *el.Value.(*record[T]))
	}
	count, total := len(s.entries), s.totalBytes
	s.mtx.Unlock()

	s.observeEvictions(expired, byCount, bySize, count, total)

	recs := make([]snapshotRecord, 0, len(items))
	for _, it := range items {
		b, err := s.codec.Marshal(it.Data)
		if err != nil {
			s.logger.Warn("cache entry could not be serialized, omitting from snapshot",
				logging.Pairs{"cacheName": s.opts.Name, "key": it.key, "error": err})
			continue
		}
		recs = append(recs, snapshotRecord{
			key:      it.key,
			data:     b,
			created:  it.CreatedAt,
			accessed: it.LastAccessedAt,
			size:     it.Size,
		})
	}

	payload, err := encoding.Encode(s.opts.CompressionID, marshalSnapshot(recs))
	if err != nil {
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "error", "encode")
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Store(s.snapshotKey(), payload, 0); err != nil {
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "error", "store")
		return fmt.Errorf("store snapshot: %w", err)
	}
	metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "flush", "snapshot")
	metrics.ObservePersist(s.opts.Name, s.opts.Provider, time.Since(start))
	s.logger.Debug("cache snapshot written",
		logging.Pairs{"cacheName": s.opts.Name, "entries": len(recs), "bytes": len(payload)})
	return nil
}

func (s *Store[T]) observeEvictions(expired, byCount, bySize, count int, total int64) {
	if expired+byCount+bySize == 0 {
		return
	}
	if expired > 0 {
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "eviction", "ttl")
	}
	if byCount > 0 {
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "eviction", "max_size_objects")
	}
	if bySize > 0 {
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "eviction", "max_size_bytes")
	}
	metrics.ObserveCacheSizeChange(s.opts.Name, s.opts.Provider, total, int64(count))
	s.logger.Debug("cache eviction complete",
		logging.Pairs{
			"cacheName": s.opts.Name, "expired": expired,
			"evictedByCount": byCount, "evictedBySize": bySize,
			"cacheSizeObjects": count, "maxSizeObjects": s.opts.MaxSizeObjects,
			"cacheSizeBytes": total, "maxSizeBytes": s.opts.MaxSizeBytes,
		},
	)
}

// load restores the snapshot held by the client, skipping expired entries
func (s *Store[T]) load() {
	key := s.snapshotKey()
	b, ls, err := s.client.Retrieve(key)
	if err != nil {
		if !errors.Is(err, cache.ErrKNF) {
			s.logger.Warn("cache snapshot was not loaded",
				logging.Pairs{"cacheName": s.opts.Name, "error": err})
		}
		return
	}
	if ls != status.LookupStatusHit || len(b) == 0 {
		return
	}

	entries, err := s.decodeSnapshot(b)
	if err != nil {
		s.logger.Warn("discarding corrupt cache snapshot",
			logging.Pairs{"cacheName": s.opts.Name, "key": key, "error": err})
		metrics.ObserveCacheEvent(s.opts.Name, s.opts.Provider, "error", "corrupt_snapshot")
		if rerr := s.client.Remove(key); rerr != nil {
			s.logger.Warn("corrupt cache snapshot could not be removed",
				logging.Pairs{"cacheName": s.opts.Name, "error": rerr})
		}
		return
	}

	now := s.now()
	s.mtx.Lock()
	for _, r := range entries {
		if s.expired(&r.Entry, now) {
			continue
		}
		if el, ok := s.entries[r.key]; ok {
			s.removeElement(el)
		}
		s.entries[r.key] = s.lru.PushBack(r)
		s.totalBytes += r.Size
	}
	count, total := len(s.entries), s.totalBytes
	s.mtx.Unlock()
	metrics.ObserveCacheSizeChange(s.opts.Name, s.opts.Provider, total, int64(count))
	s.logger.Info("cache snapshot loaded",
		logging.Pairs{"cacheName": s.opts.Name, "entries": count, "bytes": total})
}

func (s *Store[T]) decodeSnapshot(b []byte) ([]*record[T], error) {
	raw, err := encoding.Decode(b)
	if err != nil {
		return nil, err
	}
	recs, err := unmarshalSnapshot(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*record[T], 0, len(recs))
	for _, r := range recs {
		v, err := s.codec.Unmarshal(r.data)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", r.key, err)
		}
		out = append(out, &record[T]{
			key: r.key,
			Entry: Entry[T]{
				Data:           v,
				CreatedAt:      r.created,
				LastAccessedAt: r.accessed,
				Size:           r.size,
			},
		})
	}
	return out, nil
}
