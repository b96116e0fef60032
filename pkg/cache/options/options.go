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

// Package options defines the configuration of a shelfcache cache store and
// its storage provider
package options

import (
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/trickstercache/shelfcache/pkg/cache/badger/options"
	bbolt "github.com/trickstercache/shelfcache/pkg/cache/bbolt/options"
	filesystem "github.com/trickstercache/shelfcache/pkg/cache/filesystem/options"
	"github.com/trickstercache/shelfcache/pkg/cache/providers"
	redis "github.com/trickstercache/shelfcache/pkg/cache/redis/options"
	sqlite "github.com/trickstercache/shelfcache/pkg/cache/sqlite/options"
	encoding "github.com/trickstercache/shelfcache/pkg/encoding/providers"
)

const (
	// DefaultCacheProvider is the default storage provider
	DefaultCacheProvider = providers.BBolt
	// DefaultKeyPrefix namespaces every key written to storage
	DefaultKeyPrefix = "shelfcache."
	// DefaultTTL is how long an entry is valid after it was set
	DefaultTTL = 24 * time.Hour
	// DefaultMaxSizeBytes is the total estimated size that triggers eviction
	DefaultMaxSizeBytes int64 = 50 * 1024 * 1024
	// DefaultMaxSizeObjects is the entry count that triggers eviction
	DefaultMaxSizeObjects = 1000
	// DefaultEvictionTarget is the fraction of MaxSizeBytes that size eviction drains to
	DefaultEvictionTarget = 0.8
	// DefaultFlushDebounce is the quiet period before a pending snapshot is written
	DefaultFlushDebounce = 2 * time.Second
	// DefaultCompression is the compression applied to snapshots
	DefaultCompression = encoding.SnappyValue
)

var (
	// ErrInvalidName is returned when the cache name is empty or reserved
	ErrInvalidName = errors.New("invalid cache name")
	// ErrInvalidProvider is returned for an unsupported storage provider
	ErrInvalidProvider = errors.New("invalid cache provider")
	// ErrInvalidCompression is returned for an unsupported compression provider
	ErrInvalidCompression = errors.New("invalid cache compression")
	// ErrInvalidTTL is returned when the TTL is not positive
	ErrInvalidTTL = errors.New("ttl must be greater than zero")
	// ErrNegativeLimit is returned when a size limit or debounce window is negative
	ErrNegativeLimit = errors.New("cache limits cannot be negative")
	// ErrInvalidEvictionTarget is returned when the eviction target is outside (0,1]
	ErrInvalidEvictionTarget = errors.New("eviction_target must be in the range (0,1]")
)

// Options is a collection of values defining shelfcache Caching Behavior
type Options struct {
	// Name is the Name of the cache, used in logs and metrics
	Name string `yaml:"-"`
	// Provider is the storage provider: memory, filesystem, bbolt, badger, redis or sqlite
	Provider string `yaml:"provider,omitempty" env:"PROVIDER"`
	// Enabled turns the cache on or off; a disabled cache never hits and never stores
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// KeyPrefix namespaces the keys written to storage
	KeyPrefix string `yaml:"key_prefix,omitempty" env:"KEY_PREFIX"`
	// TTL is how long an entry remains valid after it was set
	TTL time.Duration `yaml:"ttl,omitempty" env:"TTL"`
	// MaxSizeBytes is the total estimated entry size that triggers eviction; 0 is unlimited
	MaxSizeBytes int64 `yaml:"max_size_bytes,omitempty" env:"MAX_SIZE_BYTES"`
	// MaxSizeObjects is the entry count that triggers eviction; 0 is unlimited
	MaxSizeObjects int `yaml:"max_size_objects,omitempty" env:"MAX_SIZE_OBJECTS"`
	// EvictionTarget is the fraction of MaxSizeBytes that size eviction drains to
	EvictionTarget float64 `yaml:"eviction_target,omitempty" env:"EVICTION_TARGET"`
	// FlushDebounce is the quiet period after the last mutation before the snapshot is written
	FlushDebounce time.Duration `yaml:"flush_debounce,omitempty" env:"FLUSH_DEBOUNCE"`
	// Compression is the encoding applied to snapshots: none, snappy, zstd or brotli
	Compression string `yaml:"compression,omitempty" env:"COMPRESSION"`

	// Redis provides options for Redis caching
	Redis *redis.Options `yaml:"redis,omitempty" envPrefix:"REDIS_"`
	// Filesystem provides options for Filesystem caching
	Filesystem *filesystem.Options `yaml:"filesystem,omitempty" envPrefix:"FILESYSTEM_"`
	// BBolt provides options for BBolt caching
	BBolt *bbolt.Options `yaml:"bbolt,omitempty" envPrefix:"BBOLT_"`
	// Badger provides options for BadgerDB caching
	Badger *badger.Options `yaml:"badger,omitempty" envPrefix:"BADGER_"`
	// SQLite provides options for SQLite caching
	SQLite *sqlite.Options `yaml:"sqlite,omitempty" envPrefix:"SQLITE_"`

	//  Synthetic Values

	// ProviderID represents the internal constant for the provided Provider string
	ProviderID providers.Provider `yaml:"-"`
	// CompressionID represents the internal constant for the provided Compression string
	CompressionID encoding.Provider `yaml:"-"`
}

var restrictedNames = map[string]struct{}{"": {}, "none": {}}

// New will return a pointer to an Options with the default configuration settings
func New() *Options {
	return &Options{
		Name:           "default",
		Provider:       DefaultCacheProvider,
		ProviderID:     providers.BBoltID,
		Enabled:        true,
		KeyPrefix:      DefaultKeyPrefix,
		TTL:            DefaultTTL,
		MaxSizeBytes:   DefaultMaxSizeBytes,
		MaxSizeObjects: DefaultMaxSizeObjects,
		EvictionTarget: DefaultEvictionTarget,
		FlushDebounce:  DefaultFlushDebounce,
		Compression:    DefaultCompression,
		CompressionID:  encoding.Snappy,
		Redis:          redis.New(),
		Filesystem:     filesystem.New(),
		BBolt:          bbolt.New(),
		Badger:         badger.New(),
		SQLite:         sqlite.New(),
	}
}

// UnmarshalYAML overlays the YAML document onto the default Options, so
// omitted values (including enabled) keep their defaults
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	type loadOptions Options
	lo := loadOptions(*(New()))
	if err := unmarshal(&lo); err != nil {
		return err
	}
	*o = Options(lo)
	return nil
}

// Clone returns a copy of the Options; provider sub-options are copied by value
func (o *Options) Clone() *Options {
	out := *o
	if o.Redis != nil {
		r := *o.Redis
		r.Endpoints = append([]string(nil), o.Redis.Endpoints...)
		out.Redis = &r
	}
	if o.Filesystem != nil {
		f := *o.Filesystem
		out.Filesystem = &f
	}
	if o.BBolt != nil {
		b := *o.BBolt
		out.BBolt = &b
	}
	if o.Badger != nil {
		b := *o.Badger
		out.Badger = &b
	}
	if o.SQLite != nil {
		s := *o.SQLite
		out.SQLite = &s
	}
	return &out
}

// Initialize sets the cache name, resolves the provider and compression
// identifiers and fills in any missing provider sub-options
func (o *Options) Initialize(name string) error {
	if name != "" {
		o.Name = name
	}
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = DefaultCacheProvider
	}
	n, ok := providers.Names[o.Provider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidProvider, o.Provider)
	}
	o.ProviderID = n

	c, ok := encoding.ProviderID(o.Compression)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidCompression, o.Compression)
	}
	o.CompressionID = c

	if o.Redis == nil {
		o.Redis = redis.New()
	}
	if o.Filesystem == nil {
		o.Filesystem = filesystem.New()
	}
	if o.BBolt == nil {
		o.BBolt = bbolt.New()
	}
	if o.Badger == nil {
		o.Badger = badger.New()
	}
	if o.SQLite == nil {
		o.SQLite = sqlite.New()
	}
	return nil
}

// Validate returns an error describing the first invalid value in the Options
func (o *Options) Validate() error {
	if _, ok := restrictedNames[o.Name]; ok {
		return ErrInvalidName
	}
	if _, ok := providers.Names[strings.ToLower(o.Provider)]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidProvider, o.Provider)
	}
	if _, ok := encoding.ProviderID(o.Compression); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidCompression, o.Compression)
	}
	if o.TTL <= 0 {
		return ErrInvalidTTL
	}
	if o.MaxSizeBytes < 0 || o.MaxSizeObjects < 0 || o.FlushDebounce < 0 {
		return ErrNegativeLimit
	}
	if !(o.EvictionTarget > 0 && o.EvictionTarget <= 1) {
		return ErrInvalidEvictionTarget
	}
	return nil
}
