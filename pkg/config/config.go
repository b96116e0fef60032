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

// Package config provides shelfcache configuration abilities, including
// parsing and printing configuration files, command line parameters, and
// environment variables, as well as default values and state.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	ao "github.com/trickstercache/shelfcache/pkg/artwork/options"
	cache "github.com/trickstercache/shelfcache/pkg/cache/options"
	fo "github.com/trickstercache/shelfcache/pkg/fetch/options"
	lib "github.com/trickstercache/shelfcache/pkg/library/options"
	lo "github.com/trickstercache/shelfcache/pkg/observability/logging/options"
	mo "github.com/trickstercache/shelfcache/pkg/observability/metrics/options"
	tracing "github.com/trickstercache/shelfcache/pkg/observability/tracing/options"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing/providers"
	rl "github.com/trickstercache/shelfcache/pkg/ratelimit/options"
	so "github.com/trickstercache/shelfcache/pkg/steam/options"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default location of the shelfcache config file
const DefaultConfigPath = "/etc/shelfcache/shelfcache.yaml"

// ErrInvalidTracingProvider is returned for an unknown tracing provider
var ErrInvalidTracingProvider = errors.New("invalid tracing provider")

// Config is the main configuration object
type Config struct {
	// Main is the primary MainConfig section
	Main *MainConfig `yaml:"main,omitempty" envPrefix:"MAIN_"`
	// Logging provides configurations that affect logging behavior
	Logging *lo.Options `yaml:"logging,omitempty" envPrefix:"LOGGING_"`
	// Metrics provides configurations for collecting Metrics about the application
	Metrics *mo.Options `yaml:"metrics,omitempty" envPrefix:"METRICS_"`
	// Tracing provides the distributed tracing configuration
	Tracing *tracing.Options `yaml:"tracing,omitempty" envPrefix:"TRACING_"`
	// Cache provides the artwork cache configuration
	Cache *cache.Options `yaml:"cache,omitempty" envPrefix:"CACHE_"`
	// RateLimit paces requests to artwork origins and the game source
	RateLimit *rl.Options `yaml:"rate_limit,omitempty" envPrefix:"RATE_LIMIT_"`
	// Fetcher configures single resource downloads
	Fetcher *fo.Options `yaml:"fetcher,omitempty" envPrefix:"FETCHER_"`
	// Artwork configures the per-game artwork coordinator
	Artwork *ao.Options `yaml:"artwork,omitempty" envPrefix:"ARTWORK_"`
	// Loader configures the progressive library loader
	Loader *lib.Options `yaml:"loader,omitempty" envPrefix:"LOADER_"`
	// Source configures where the game list comes from
	Source *so.Options `yaml:"source,omitempty" envPrefix:"SOURCE_"`

	configFilePath     string
	configLastModified time.Time
}

// MainConfig is a collection of general configuration values.
type MainConfig struct {
	// InstanceID represents a unique ID for the current instance, when multiple instances on the same host
	InstanceID int `yaml:"instance_id,omitempty" env:"INSTANCE_ID"`
	// ServerName identifies this host in logs; defaults to os.Hostname
	ServerName string `yaml:"server_name,omitempty" env:"SERVER_NAME"`
	// ShutdownTimeout bounds the final cache flush and listener shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty" env:"SHUTDOWN_TIMEOUT"`
}

// NewConfig returns a Config initialized with default values.
func NewConfig() *Config {
	hn, _ := os.Hostname()
	return &Config{
		Main: &MainConfig{
			ServerName:      hn,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging:   lo.New(),
		Metrics:   mo.New(),
		Tracing:   tracing.New(),
		Cache:     cache.New(),
		RateLimit: rl.New(),
		Fetcher:   fo.New(),
		Artwork:   ao.New(),
		Loader:    lib.New(),
		Source:    so.New(),
	}
}

// loadFile loads application configuration from a YAML-formatted file.
func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.loadYAMLConfig(b); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.configFilePath = path
	c.configLastModified = c.CheckFileLastModified()
	return nil
}

// loadYAMLConfig loads application configuration from a YAML-formatted byte slice.
func (c *Config) loadYAMLConfig(b []byte) error {
	if err := yaml.Unmarshal(b, c); err != nil {
		return err
	}
	c.fillNilSections()
	return nil
}

// fillNilSections restores any section a document explicitly set to null
func (c *Config) fillNilSections() {
	d := NewConfig()
	if c.Main == nil {
		c.Main = d.Main
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
	if c.Tracing == nil {
		c.Tracing = d.Tracing
	}
	if c.Cache == nil {
		c.Cache = d.Cache
	}
	if c.RateLimit == nil {
		c.RateLimit = d.RateLimit
	}
	if c.Fetcher == nil {
		c.Fetcher = d.Fetcher
	}
	if c.Artwork == nil {
		c.Artwork = d.Artwork
	}
	if c.Loader == nil {
		c.Loader = d.Loader
	}
	if c.Source == nil {
		c.Source = d.Source
	}
}

// ConfigFilePath returns the path of the loaded config file, if any
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// CheckFileLastModified returns the last modified date of the running config file, if present
func (c *Config) CheckFileLastModified() time.Time {
	if c.configFilePath == "" {
		return time.Time{}
	}
	file, err := os.Stat(c.configFilePath)
	if err != nil {
		return time.Time{}
	}
	return file.ModTime()
}

// Validate returns the first configuration error found in any section
// other than source
func (c *Config) Validate() error {
	if _, ok := providers.Names[c.Tracing.Provider]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTracingProvider, c.Tracing.Provider)
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Initialize(c.Cache.Name); err != nil {
		return err
	}
	for _, v := range []interface{ Validate() error }{
		c.RateLimit, c.Fetcher, c.Artwork, c.Loader,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}
