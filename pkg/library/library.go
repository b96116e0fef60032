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

// Package library loads artwork for a game library in priority order,
// consulting the cache before fetching
package library

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/cache/status"
	"github.com/trickstercache/shelfcache/pkg/library/options"
)

// Game is the canonical game record. Source specific shapes are converted to
// a Game before reaching the loader.
type Game struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	PlaytimeMinutes       int                `json:"playtime_minutes"`
	RecentPlaytimeMinutes int                `json:"recent_playtime_minutes,omitempty"`
	ArtworkLocators       artwork.LocatorSet `json:"artwork_locators"`
}

// EnrichedGame is a Game with its loaded artwork
type EnrichedGame struct {
	Game
	Artwork artwork.Result
	// Status is LookupStatusHit when the artwork came from the cache
	Status status.LookupStatus
}

// Priority returns games in load order. It must not modify its input.
type Priority func([]Game) []Game

// ByPlaytime orders games with playtime by playtime descending, followed by
// games without playtime by name ascending. Ties keep their input order.
func ByPlaytime(games []Game) []Game {
	out := slices.Clone(games)
	slices.SortStableFunc(out, comparePlaytime)
	return out
}

// ByRecentPlaytime orders games by recent playtime descending, falling back
// to the ByPlaytime order
func ByRecentPlaytime(games []Game) []Game {
	out := slices.Clone(games)
	slices.SortStableFunc(out, func(a, b Game) int {
		if c := cmp.Compare(b.RecentPlaytimeMinutes, a.RecentPlaytimeMinutes); c != 0 {
			return c
		}
		return comparePlaytime(a, b)
	})
	return out
}

func comparePlaytime(a, b Game) int {
	ap, bp := a.PlaytimeMinutes > 0, b.PlaytimeMinutes > 0
	switch {
	case ap && bp:
		return cmp.Compare(b.PlaytimeMinutes, a.PlaytimeMinutes)
	case ap:
		return -1
	case bp:
		return 1
	}
	return cmp.Compare(a.Name, b.Name)
}

// PriorityByName returns the Priority for a configured name
func PriorityByName(name string) (Priority, error) {
	switch name {
	case "", options.PriorityPlaytime:
		return ByPlaytime, nil
	case options.PriorityRecent:
		return ByRecentPlaytime, nil
	}
	return nil, fmt.Errorf("%w: %s", options.ErrInvalidPriority, name)
}

// CacheKey returns the cache key of a game's artwork
func CacheKey(id string) string {
	return "artwork:" + id
}
