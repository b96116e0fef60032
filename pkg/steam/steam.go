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

// Package steam normalizes Steam game records into library games and
// provides the sources that read them
package steam

import (
	"strconv"
	"strings"

	"github.com/trickstercache/shelfcache/pkg/artwork"
	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/steam/options"
)

// OwnedGame is a game as returned by the Steam Web API GetOwnedGames call
type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	Playtime2Weeks  int    `json:"playtime_2weeks,omitempty"`
	ImgIconURL      string `json:"img_icon_url,omitempty"`
}

// StoreGame is a game as kept in a saved library file
type StoreGame struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Playtime       int                `json:"playtime"`
	RecentPlaytime int                `json:"recentPlaytime,omitempty"`
	Artwork        artwork.LocatorSet `json:"artwork"`
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

// Locators builds the artwork locators for Steam apps
type Locators struct {
	CDNBaseURL  string
	IconBaseURL string
}

// NewLocators returns the Locators described by the source options
func NewLocators(o *options.Options) Locators {
	l := Locators{CDNBaseURL: options.DefaultCDNBaseURL, IconBaseURL: options.DefaultIconBaseURL}
	if o != nil {
		if o.CDNBaseURL != "" {
			l.CDNBaseURL = o.CDNBaseURL
		}
		if o.IconBaseURL != "" {
			l.IconBaseURL = o.IconBaseURL
		}
	}
	l.CDNBaseURL = strings.TrimSuffix(l.CDNBaseURL, "/")
	l.IconBaseURL = strings.TrimSuffix(l.IconBaseURL, "/")
	return l
}

// For returns the LocatorSet for appID. The icon is omitted when iconHash
// is empty.
func (l Locators) For(appID, iconHash string) artwork.LocatorSet {
	if appID == "" {
		return artwork.LocatorSet{}
	}
	s := artwork.LocatorSet{
		Logo:    l.CDNBaseURL + "/" + appID + "/logo.png",
		Header:  l.CDNBaseURL + "/" + appID + "/header.jpg",
		Library: l.CDNBaseURL + "/" + appID + "/library_600x900.jpg",
	}
	if iconHash != "" {
		s.Icon = l.IconBaseURL + "/" + appID + "/" + iconHash + ".jpg"
	}
	return s
}

// Game returns g as a library Game
func (l Locators) Game(g OwnedGame) library.Game {
	id := strconv.Itoa(g.AppID)
	return library.Game{
		ID:                    id,
		Name:                  g.Name,
		PlaytimeMinutes:       g.PlaytimeForever,
		RecentPlaytimeMinutes: g.Playtime2Weeks,
		ArtworkLocators:       l.For(id, g.ImgIconURL),
	}
}

// StoreGame returns g as a library Game. Locators missing from the record
// are filled in from the CDN when the id is numeric.
func (l Locators) StoreGame(g StoreGame) library.Game {
	set := g.Artwork
	if _, err := strconv.Atoi(g.ID); err == nil {
		def := l.For(g.ID, "")
		if set.Logo == "" {
			set.Logo = def.Logo
		}
		if set.Header == "" {
			set.Header = def.Header
		}
		if set.Library == "" {
			set.Library = def.Library
		}
	}
	return library.Game{
		ID:                    g.ID,
		Name:                  g.Name,
		PlaytimeMinutes:       g.Playtime,
		RecentPlaytimeMinutes: g.RecentPlaytime,
		ArtworkLocators:       set,
	}
}

// OwnedGames normalizes a list of OwnedGame
func (l Locators) OwnedGames(in []OwnedGame) []library.Game {
	out := make([]library.Game, 0, len(in))
	for _, g := range in {
		out = append(out, l.Game(g))
	}
	return out
}

// StoreGames normalizes a list of StoreGame
func (l Locators) StoreGames(in []StoreGame) []library.Game {
	out := make([]library.Game, 0, len(in))
	for _, g := range in {
		out = append(out, l.StoreGame(g))
	}
	return out
}
