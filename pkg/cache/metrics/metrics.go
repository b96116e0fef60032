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

// Package metrics records cache store activity to the shelfcache prometheus metrics
package metrics

import (
	"time"

	"github.com/trickstercache/shelfcache/pkg/observability/metrics"
)

// ObserveCacheOperation increments counters as cache operations occur
func ObserveCacheOperation(cache, cacheType, operation, status string, bytes float64) {
	metrics.CacheObjectOperations.WithLabelValues(cache, cacheType, operation, status).Inc()
	if bytes > 0 {
		metrics.CacheByteOperations.WithLabelValues(cache, cacheType, operation, status).Add(bytes)
	}
}

// ObserveCacheHit records a cache hit
func ObserveCacheHit(cache, cacheType string, bytes float64) {
	ObserveCacheOperation(cache, cacheType, "get", "hit", bytes)
}

// ObserveCacheMiss records a cache miss; status is "kmiss" or "expired"
func ObserveCacheMiss(cache, cacheType, status string) {
	ObserveCacheOperation(cache, cacheType, "get", status, 0)
}

// ObserveCacheSet records a cache write
func ObserveCacheSet(cache, cacheType string, bytes float64) {
	ObserveCacheOperation(cache, cacheType, "set", "none", bytes)
}

// ObserveCacheDel records a cache deletion event
func ObserveCacheDel(cache, cacheType string, count float64) {
	metrics.CacheObjectOperations.WithLabelValues(cache, cacheType, "del", "none").Add(count)
}

// ObserveCacheEvent increments counters as cache events occur
func ObserveCacheEvent(cache, cacheType, event, reason string) {
	metrics.CacheEvents.WithLabelValues(cache, cacheType, event, reason).Inc()
}

// ObserveCacheSizeChange adjusts counters and gauges as the cache size changes
func ObserveCacheSizeChange(cache, cacheType string, byteCount, objectCount int64) {
	metrics.CacheObjects.WithLabelValues(cache, cacheType).Set(float64(objectCount))
	metrics.CacheBytes.WithLabelValues(cache, cacheType).Set(float64(byteCount))
}

// ObserveCacheLimits publishes the configured eviction thresholds
func ObserveCacheLimits(cache, cacheType string, maxBytes int64, maxObjects int) {
	metrics.CacheMaxBytes.WithLabelValues(cache, cacheType).Set(float64(maxBytes))
	metrics.CacheMaxObjects.WithLabelValues(cache, cacheType).Set(float64(maxObjects))
}

// ObservePersist records the duration of a snapshot write
func ObservePersist(cache, cacheType string, d time.Duration) {
	metrics.CachePersistDuration.WithLabelValues(cache, cacheType).Observe(d.Seconds())
}
