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

package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/ratelimit"
	"github.com/trickstercache/shelfcache/pkg/steam/options"

	"github.com/stretchr/testify/require"
)

const ownedGamesBody = `{"response":{"game_count":2,"games":[
	{"appid":620,"name":"Portal 2","playtime_forever":1500,"playtime_2weeks":30,"img_icon_url":"abc123"},
	{"appid":440,"name":"Team Fortress 2","playtime_forever":0}
]}}`

func TestLocators(t *testing.T) {
	l := NewLocators(&options.Options{CDNBaseURL: "https://cdn.example/apps/"})
	s := l.For("620", "abc123")
	require.Equal(t, "https://cdn.example/apps/620/header.jpg", s.Header)
	require.Equal(t, "https://cdn.example/apps/620/logo.png", s.Logo)
	require.Equal(t, "https://cdn.example/apps/620/library_600x900.jpg", s.Library)
	require.Equal(t, options.DefaultIconBaseURL+"/620/abc123.jpg", s.Icon)
	require.Equal(t, 3, l.For("620", "").Count())
	require.Zero(t, l.For("", "abc").Count())
}

func TestDecodeOwnedGames(t *testing.T) {
	games, err := NewLocators(nil).Decode([]byte(ownedGamesBody))
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, library.Game{
		ID:                    "620",
		Name:                  "Portal 2",
		PlaytimeMinutes:       1500,
		RecentPlaytimeMinutes: 30,
		ArtworkLocators:       NewLocators(nil).For("620", "abc123"),
	}, games[0])
	require.Empty(t, games[1].ArtworkLocators.Icon)
}

func TestDecodeStoreGames(t *testing.T) {
	body := `[
		{"id":"620","name":"Portal 2","playtime":1500,"artwork":{"header":"https://example.com/h.jpg"}},
		{"id":"custom-1","name":"Homebrew","playtime":5,"artwork":{"icon":"https://example.com/i.png"}}
	]`
	games, err := NewLocators(nil).Decode([]byte(body))
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, "https://example.com/h.jpg", games[0].ArtworkLocators.Header)
	require.Equal(t, options.DefaultCDNBaseURL+"/620/logo.png", games[0].ArtworkLocators.Logo)
	require.Equal(t, 1, games[1].ArtworkLocators.Count())
	require.Equal(t, 5, games[1].PlaytimeMinutes)

	_, err = NewLocators(nil).Decode([]byte("  "))
	require.ErrorIs(t, err, ErrUnknownFormat)
	_, err = NewLocators(nil).Decode([]byte(`"games"`))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path, []byte(ownedGamesBody), 0o600))
	src, err := New(&options.Options{Type: options.TypeFile, Path: path}, nil, nil, nil, nil)
	require.NoError(t, err)
	games, err := src.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	src = NewFileSource(filepath.Join(t.TempDir(), "missing.json"), NewLocators(nil))
	_, err = src.Games(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptionsValidate(t *testing.T) {
	require.ErrorIs(t, options.New().Validate(), options.ErrMissingPath)
	require.ErrorIs(t, (&options.Options{Type: "ftp"}).Validate(), options.ErrInvalidType)
	require.ErrorIs(t, (&options.Options{Type: options.TypeAPI}).Validate(), options.ErrMissingProxyURL)
	require.ErrorIs(t, (&options.Options{Type: options.TypeAPI, ProxyURL: "http://x"}).Validate(),
		options.ErrMissingSteamID)
	_, err := New(&options.Options{Type: "ftp"}, nil, nil, nil, nil)
	require.ErrorIs(t, err, options.ErrInvalidType)
}

func TestAPISource(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api/GetOwnedGames", r.URL.Path)
		require.Equal(t, "7656", r.URL.Query().Get("steamid"))
		require.Equal(t, "1", r.URL.Query().Get("include_appinfo"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ownedGamesBody))
	}))
	defer srv.Close()

	l, err := ratelimit.New(50, 10)
	require.NoError(t, err)
	o := &options.Options{Type: options.TypeAPI, ProxyURL: srv.URL + "/api/", SteamID: "7656",
		Timeout: time.Second}
	src, err := New(o, srv.Client(), l, nil, nil)
	require.NoError(t, err)

	start := time.Now()
	for range 2 {
		games, err := src.Games(context.Background())
		require.NoError(t, err)
		require.Len(t, games, 2)
		require.Equal(t, "Portal 2", games[0].Name)
	}
	require.Equal(t, int32(2), calls.Load())
	require.GreaterOrEqual(t, time.Since(start), l.Interval())
}

func TestAPISourceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()
	src := NewAPISource(&options.Options{Type: options.TypeAPI, ProxyURL: srv.URL, SteamID: "1"},
		nil, nil, nil, nil)
	_, err := src.Games(context.Background())
	require.ErrorIs(t, err, ErrAPIStatus)
}
