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

package options

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout is the default per-download timeout
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps the size of a downloaded resource
	DefaultMaxBodyBytes int64 = 8 * 1024 * 1024
	// DefaultMaxIdleConns is the default idle connection pool size
	DefaultMaxIdleConns = 8
	// DefaultKeepAliveTimeout is the default TCP keep-alive period
	DefaultKeepAliveTimeout = 30 * time.Second
	// DefaultUserAgent identifies shelfcache to artwork origins
	DefaultUserAgent = "shelfcache"
)

// DefaultAllowedContentTypes are the image media types accepted by default
var DefaultAllowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/avif",
}

// ErrInvalidTimeout is returned when the timeout is not positive
var ErrInvalidTimeout = errors.New("fetcher timeout must be greater than zero")

// ErrInvalidMaxBodyBytes is returned when the body size cap is negative
var ErrInvalidMaxBodyBytes = errors.New("fetcher max_body_bytes cannot be negative")

// Options is a collection of resource fetcher configurations
type Options struct {
	// Timeout bounds each download, including reading the body
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
	// MaxBodyBytes is the largest accepted response body; 0 is unlimited
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty" env:"MAX_BODY_BYTES"`
	// AllowedContentTypes is the media type allowlist
	AllowedContentTypes []string `yaml:"allowed_content_types,omitempty" env:"ALLOWED_CONTENT_TYPES"`
	// EnableFallback degrades failed downloads to a nil result instead of an error
	EnableFallback bool `yaml:"enable_fallback" env:"ENABLE_FALLBACK"`
	// MaxIdleConns is the size of the idle connection pool
	MaxIdleConns int `yaml:"max_idle_conns,omitempty" env:"MAX_IDLE_CONNS"`
	// KeepAliveTimeout is the TCP keep-alive period
	KeepAliveTimeout time.Duration `yaml:"keep_alive_timeout,omitempty" env:"KEEP_ALIVE_TIMEOUT"`
	// UserAgent is sent with every download
	UserAgent string `yaml:"user_agent,omitempty" env:"USER_AGENT"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{
		Timeout:             DefaultTimeout,
		MaxBodyBytes:        DefaultMaxBodyBytes,
		AllowedContentTypes: append([]string(nil), DefaultAllowedContentTypes...),
		EnableFallback:      true,
		MaxIdleConns:        DefaultMaxIdleConns,
		KeepAliveTimeout:    DefaultKeepAliveTimeout,
		UserAgent:           DefaultUserAgent,
	}
}

// UnmarshalYAML overlays the YAML document onto the default Options
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	type loadOptions Options
	lo := loadOptions(*(New()))
	if err := unmarshal(&lo); err != nil {
		return err
	}
	*o = Options(lo)
	return nil
}

// Validate returns an error if the Options are unusable
func (o *Options) Validate() error {
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if o.MaxBodyBytes < 0 {
		return ErrInvalidMaxBodyBytes
	}
	return nil
}
