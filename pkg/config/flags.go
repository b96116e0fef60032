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

package config

// Flags holds the values of command line flags that override the config.
// Zero values are not applied.
type Flags struct {
	ConfigPath    string
	LogLevel      string
	InstanceID    int
	MetricsPort   int
	CacheProvider string
	SourcePath    string
	SteamID       string
	MaxGames      int
	Priority      string

	customPath bool
}

// loadFlags loads configuration from command line flags.
func (c *Config) loadFlags(flags *Flags) {
	if flags == nil {
		return
	}
	if flags.LogLevel != "" {
		c.Logging.LogLevel = flags.LogLevel
	}
	if flags.InstanceID > 0 {
		c.Main.InstanceID = flags.InstanceID
	}
	if flags.MetricsPort > 0 {
		c.Metrics.ListenPort = flags.MetricsPort
	}
	if flags.CacheProvider != "" {
		c.Cache.Provider = flags.CacheProvider
	}
	if flags.SourcePath != "" {
		c.Source.Path = flags.SourcePath
	}
	if flags.SteamID != "" {
		c.Source.SteamID = flags.SteamID
	}
	if flags.MaxGames > 0 {
		c.Loader.MaxGames = flags.MaxGames
	}
	if flags.Priority != "" {
		c.Loader.Priority = flags.Priority
	}
}
