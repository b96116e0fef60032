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

	"github.com/trickstercache/shelfcache/pkg/appinfo"
	"github.com/trickstercache/shelfcache/pkg/config"
	"github.com/trickstercache/shelfcache/pkg/daemon"
	"github.com/trickstercache/shelfcache/pkg/daemon/instance"

	"github.com/spf13/cobra"
)

func newStatsCmd(flags *config.Flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "stats",
		GroupID: groupCache,
		Short:   "Print the entry count and size of the persisted cache",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemon.Run(cmd.Context(), flags, cmd.ErrOrStderr(),
				func(_ context.Context, si *instance.ServerInstance) error {
					st := si.Store.Stats()
					w := cmd.OutOrStdout()
					if asJSON {
						return json.NewEncoder(w).Encode(map[string]any{
							"cache":       si.Store.Name(),
							"provider":    si.Config.Cache.Provider,
							"enabled":     si.Store.Enabled(),
							"entries":     st.EntryCount,
							"total_bytes": st.TotalBytes,
						})
					}
					fmt.Fprintf(w, "cache:       %s (%s)\n", si.Store.Name(), si.Config.Cache.Provider)
					fmt.Fprintf(w, "enabled:     %t\n", si.Store.Enabled())
					fmt.Fprintf(w, "entries:     %d\n", st.EntryCount)
					fmt.Fprintf(w, "total bytes: %d\n", st.TotalBytes)
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stats as JSON")
	return cmd
}

func newClearCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		GroupID: groupCache,
		Short:   "Remove every cached entry and persist the empty cache",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemon.Run(cmd.Context(), flags, cmd.ErrOrStderr(),
				func(_ context.Context, si *instance.ServerInstance) error {
					n := si.Store.Stats().EntryCount
					if err := si.Store.Clear(); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
					return nil
				})
		},
	}
}

func newValidateCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:     "validate-config",
		GroupID: groupUtility,
		Short:   "Validate the configuration, including the game source, and exit",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags)
			if err != nil {
				return err
			}
			if err := cfg.Source.Validate(); err != nil {
				return fmt.Errorf("source: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "shelfcache configuration validation succeeded")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: groupUtility,
		Short:   "Print the shelfcache version",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appinfo.String())
		},
	}
}
