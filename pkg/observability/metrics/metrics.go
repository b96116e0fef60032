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

// Package metrics implements prometheus metrics and exposes the metrics HTTP listener
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricNamespace    = "shelfcache"
	cacheSubsystem     = "cache"
	rateLimitSubsystem = "ratelimit"
	fetchSubsystem     = "fetch"
	loaderSubsystem    = "loader"
	buildSubsystem     = "build"
)

// Default histogram buckets used by shelfcache
var (
	defaultBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}
)

// BuildInfo is a Gauge representing the shelfcache binary build information
var BuildInfo *prometheus.GaugeVec

// CacheObjectOperations is a Counter of operations (in # of objects) performed on a cache
var CacheObjectOperations *prometheus.CounterVec

// CacheByteOperations is a Counter of operations (in # of bytes) performed on a cache
var CacheByteOperations *prometheus.CounterVec

// CacheEvents is a Counter of events (evictions, purges, flushes) performed on a cache
var CacheEvents *prometheus.CounterVec

// CacheObjects is a Gauge representing the number of objects in a cache
var CacheObjects *prometheus.GaugeVec

// CacheBytes is a Gauge representing the number of bytes in a cache
var CacheBytes *prometheus.GaugeVec

// CacheMaxObjects is a Gauge for the cache's Max Object Threshold for triggering an eviction exercise
var CacheMaxObjects *prometheus.GaugeVec

// CacheMaxBytes is a Gauge for the cache's Max Bytes Threshold for triggering an eviction exercise
var CacheMaxBytes *prometheus.GaugeVec

// CachePersistDuration is a Histogram of the time taken to write a cache snapshot
var CachePersistDuration *prometheus.HistogramVec

// RateLimitWaitDuration is a Histogram of the time callers were held by a rate limiter
var RateLimitWaitDuration *prometheus.HistogramVec

// FetchRequests is a Counter of artwork downloads by outcome
var FetchRequests *prometheus.CounterVec

// FetchDuration is a Histogram of artwork download durations
var FetchDuration *prometheus.HistogramVec

// FetchBytes is a Counter of artwork bytes downloaded
var FetchBytes prometheus.Counter

// LoaderGames is a Counter of games processed by the library loader, by cache status
var LoaderGames *prometheus.CounterVec

// LoaderProgress is a Gauge of the ratio of games loaded in the current run
var LoaderProgress prometheus.Gauge

func init() {

	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: buildSubsystem,
			Name:      "info",
			Help: "A metric with a constant '1' value labeled by version," +
				"revision, and goversion from which shelfcache was built.",
		},
		[]string{"goversion", "revision", "version"},
	)

	CacheObjectOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "operation_objects_total",
			Help:      "Count (in # of objects) of operations performed on a cache.",
		},
		[]string{"cache_name", "provider", "operation", "status"},
	)

	CacheByteOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "operation_bytes_total",
			Help:      "Count (in bytes) of operations performed on a cache.",
		},
		[]string{"cache_name", "provider", "operation", "status"},
	)

	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "events_total",
			Help:      "Count of events performed on a cache.",
		},
		[]string{"cache_name", "provider", "event", "reason"},
	)

	CacheObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "usage_objects",
			Help:      "Number of objects in a cache.",
		},
		[]string{"cache_name", "provider"},
	)

	CacheBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "usage_bytes",
			Help:      "Number of bytes in a cache.",
		},
		[]string{"cache_name", "provider"},
	)

	CacheMaxObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "max_usage_objects",
			Help:      "Maximum number of objects permitted in a cache before eviction.",
		},
		[]string{"cache_name", "provider"},
	)

	CacheMaxBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "max_usage_bytes",
			Help:      "Maximum number of bytes permitted in a cache before eviction.",
		},
		[]string{"cache_name", "provider"},
	)

	CachePersistDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: cacheSubsystem,
			Name:      "persist_duration_seconds",
			Help:      "Time required in seconds to write a cache snapshot.",
			Buckets:   defaultBuckets,
		},
		[]string{"cache_name", "provider"},
	)

	RateLimitWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: rateLimitSubsystem,
			Name:      "wait_duration_seconds",
			Help:      "Time in seconds callers were held by a rate limiter.",
			Buckets:   defaultBuckets,
		},
		[]string{"limiter_name"},
	)

	FetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: fetchSubsystem,
			Name:      "requests_total",
			Help:      "Count of artwork downloads by outcome.",
		},
		[]string{"outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: fetchSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Time required in seconds to download an artwork resource.",
			Buckets:   defaultBuckets,
		},
		[]string{"outcome"},
	)

	FetchBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: fetchSubsystem,
			Name:      "received_bytes_total",
			Help:      "Count of artwork bytes downloaded.",
		},
	)

	LoaderGames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: loaderSubsystem,
			Name:      "games_total",
			Help:      "Count of games processed by the library loader.",
		},
		[]string{"cache_status"},
	)

	LoaderProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: loaderSubsystem,
			Name:      "progress_ratio",
			Help:      "Ratio of games loaded in the current library load.",
		},
	)

	// Register Metrics
	prometheus.MustRegister(BuildInfo)
	prometheus.MustRegister(CacheObjectOperations)
	prometheus.MustRegister(CacheByteOperations)
	prometheus.MustRegister(CacheEvents)
	prometheus.MustRegister(CacheObjects)
	prometheus.MustRegister(CacheBytes)
	prometheus.MustRegister(CacheMaxObjects)
	prometheus.MustRegister(CacheMaxBytes)
	prometheus.MustRegister(CachePersistDuration)
	prometheus.MustRegister(RateLimitWaitDuration)
	prometheus.MustRegister(FetchRequests)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(FetchBytes)
	prometheus.MustRegister(LoaderGames)
	prometheus.MustRegister(LoaderProgress)
}

// Handler returns the http handler for the listener
func Handler() http.Handler {
	return promhttp.Handler()
}
