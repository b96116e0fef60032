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

package main

import (
	"io"

	"github.com/trickstercache/shelfcache/pkg/appinfo"
	"github.com/trickstercache/shelfcache/pkg/config"

	"github.com/spf13/cobra"
)

// Command group IDs for organizing help output
const (
	groupLibrary = "library"
	groupCache   = "cache"
	groupUtility = "utility"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &config.Flags{}
	cmd := &cobra.Command{
		Use:   applicationName,
		Short: "Artwork cache and progressive loader for game libraries",
		Long: `shelfcache loads a game library in priority order, fetching the artwork
for each game through a rate limited downloader and keeping it in a local
TTL and size bounded cache.

Configuration is read from a YAML file, then SHELFCACHE_* environment
variables, then command line flags.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Version = appinfo.String()
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "",
		"Path to the shelfcache config file (default "+config.DefaultConfigPath+")")
	pf.StringVar(&flags.LogLevel, "log-level", "",
		"Level of logging to use (debug, info, warn, error)")
	pf.IntVar(&flags.InstanceID, "instance-id", 0,
		"Instance ID, for running multiple processes from one config while logging to their own files")
	pf.IntVar(&flags.MetricsPort, "metrics-port", 0,
		"Port that the /metrics endpoint will listen on")
	pf.StringVar(&flags.CacheProvider, "cache-provider", "",
		"Cache storage provider (memory, filesystem, bbolt, badger, redis, sqlite)")

	cmd.AddGroup(
		&cobra.Group{ID: groupLibrary, Title: "Library Commands:"},
		&cobra.Group{ID: groupCache, Title: "Cache Commands:"},
		&cobra.Group{ID: groupUtility, Title: "Utility Commands:"},
	)
	cmd.AddCommand(
		newLoadCmd(flags),
		newStatsCmd(flags),
		newClearCmd(flags),
		newValidateCmd(flags),
		newVersionCmd(),
	)
	return cmd
}
