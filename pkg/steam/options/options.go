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
	// DefaultCDNBaseURL serves the header, logo and library capsule images
	DefaultCDNBaseURL = "https://cdn.cloudflare.steamstatic.com/steam/apps"
	// DefaultIconBaseURL serves the community icon images
	DefaultIconBaseURL = "https://media.steampowered.com/steamcommunity/public/images/apps"
	// DefaultTimeout bounds a game list request
	DefaultTimeout = 15 * time.Second
)

// Source types
const (
	TypeFile = "file"
	TypeAPI  = "api"
)

var (
	// ErrInvalidType is returned for an unknown source type
	ErrInvalidType = errors.New("source type must be 'file' or 'api'")
	// ErrMissingPath is returned when a file source has no path
	ErrMissingPath = errors.New("file source requires a path")
	// ErrMissingProxyURL is returned when an api source has no proxy url
	ErrMissingProxyURL = errors.New("api source requires a proxy_url")
	// ErrMissingSteamID is returned when an api source has no steam id
	ErrMissingSteamID = errors.New("api source requires a steam_id")
)

// Options is a collection of game source configurations
type Options struct {
	// Type is the source type, 'file' or 'api'
	Type string `yaml:"type,omitempty" env:"TYPE"`
	// Path is the JSON game list read by a file source
	Path string `yaml:"path,omitempty" env:"PATH"`
	// ProxyURL is the base URL of the CORS proxy fronting the Steam Web API
	ProxyURL string `yaml:"proxy_url,omitempty" env:"PROXY_URL"`
	// SteamID is the 64-bit id of the library owner
	SteamID string `yaml:"steam_id,omitempty" env:"STEAM_ID"`
	// CDNBaseURL prefixes capsule artwork locators
	CDNBaseURL string `yaml:"cdn_base_url,omitempty" env:"CDN_BASE_URL"`
	// IconBaseURL prefixes icon artwork locators
	IconBaseURL string `yaml:"icon_base_url,omitempty" env:"ICON_BASE_URL"`
	// Timeout bounds a game list request
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{
		Type:        TypeFile,
		CDNBaseURL:  DefaultCDNBaseURL,
		IconBaseURL: DefaultIconBaseURL,
		Timeout:     DefaultTimeout,
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
	switch o.Type {
	case TypeFile:
		if o.Path == "" {
			return ErrMissingPath
		}
	case TypeAPI:
		if o.ProxyURL == "" {
			return ErrMissingProxyURL
		}
		if o.SteamID == "" {
			return ErrMissingSteamID
		}
	default:
		return ErrInvalidType
	}
	return nil
}
