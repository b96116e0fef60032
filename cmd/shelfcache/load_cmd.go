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
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/config"
	"github.com/trickstercache/shelfcache/pkg/daemon"
	"github.com/trickstercache/shelfcache/pkg/daemon/instance"
	"github.com/trickstercache/shelfcache/pkg/fetch"
	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"

	"github.com/spf13/cobra"
)

// gameSummary is the JSON form of a loaded game
type gameSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Playtime int      `json:"playtime_minutes"`
	Cache    string   `json:"cache"`
	Artwork  []string `json:"artwork"`
	Missing  []string `json:"missing,omitempty"`
	Bytes    int64    `json:"bytes"`
}

func summarize(eg library.EnrichedGame) gameSummary {
	s := gameSummary{
		ID:       eg.ID,
		Name:     eg.Name,
		Playtime: eg.PlaytimeMinutes,
		Cache:    eg.Status.String(),
		Artwork:  []string{},
		Bytes:    eg.Artwork.Size(),
	}
	for _, k := range artwork.Kinds {
		if eg.Artwork.Get(k) != nil {
			s.Artwork = append(s.Artwork, k.String())
		} else if eg.ArtworkLocators.Get(k) != "" {
			s.Missing = append(s.Missing, k.String())
		}
	}
	return s
}

func newLoadCmd(flags *config.Flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "load",
		GroupID: groupLibrary,
		Short:   "Load the library in priority order, fetching missing artwork",
		Long: `Load reads the game list from the configured source, orders it by
priority, and resolves the artwork of each game from the cache or, on a miss,
from the network. Games are printed as they finish loading.

Examples:
  shelfcache load --source games.json
  shelfcache load --steam-id 76561197960287930 --max-games 50 --priority recent
  shelfcache load --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemon.Run(cmd.Context(), flags, cmd.ErrOrStderr(),
				func(ctx context.Context, si *instance.ServerInstance) error {
					return runLoad(ctx, si, cmd.OutOrStdout(), asJSON)
				})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.SourcePath, "source", "", "Path to a JSON game list file")
	f.StringVar(&flags.SteamID, "steam-id", "", "Steam ID whose owned games are loaded through the api source")
	f.IntVar(&flags.MaxGames, "max-games", 0, "Maximum number of games to load (0 loads all)")
	f.StringVar(&flags.Priority, "priority", "", "Load order: playtime or recent")
	f.BoolVar(&asJSON, "json", false, "Print the loaded games as JSON when the load finishes")
	return cmd
}

func runLoad(ctx context.Context, si *instance.ServerInstance, w io.Writer, asJSON bool) error {
	src, err := si.Source()
	if err != nil {
		return err
	}
	games, err := src.Games(ctx)
	if err != nil {
		return fmt.Errorf("reading games: %w", err)
	}
	lo := si.Config.Loader
	priority, err := library.PriorityByName(lo.Priority)
	if err != nil {
		return err
	}

	var failed int
	loaded, err := si.Loader.LoadProgressively(ctx, games, library.LoadOptions{
		MaxGames:         lo.MaxGames,
		Priority:         priority,
		SkipCachingEmpty: lo.SkipCachingEmpty,
		OnGameLoaded: func(eg library.EnrichedGame) {
			if !asJSON {
				printGame(w, eg)
			}
		},
		OnProgress: func(current, total int) {
			si.Logger.Debug("library load progress", logging.Pairs{"current": current, "total": total})
		},
		Fetch: artwork.FetchOptions{
			OnKindFetched: func(_ artwork.Kind, b *fetch.Blob, err error) {
				if err != nil || b == nil {
					failed++
				}
			},
		},
	})

	if asJSON {
		out := make([]gameSummary, 0, len(loaded))
		for _, eg := range loaded {
			out = append(out, summarize(eg))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if jerr := enc.Encode(out); jerr != nil && err == nil {
			err = jerr
		}
	} else {
		st := si.Store.Stats()
		fmt.Fprintf(w, "loaded %d of %d games, %d artwork downloads failed, cache holds %d entries (%d bytes)\n",
			len(loaded), len(games), failed, st.EntryCount, st.TotalBytes)
	}
	return err
}

func printGame(w io.Writer, eg library.EnrichedGame) {
	s := summarize(eg)
	fmt.Fprintf(w, "%-10s %-40.40s %-8s %d/%d artwork %8d bytes\n",
		s.ID, s.Name, s.Cache, len(s.Artwork), eg.ArtworkLocators.Count(), s.Bytes)
}
