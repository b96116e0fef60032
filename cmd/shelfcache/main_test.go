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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trickstercache/shelfcache/pkg/steam/options"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	configPath string
	gamesPath  string
	origin     *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png:" + r.URL.Path))
	}))
	t.Cleanup(origin.Close)

	dir := t.TempDir()
	games := fmt.Sprintf(`[
		{"id":"g1","name":"Unplayed","playtime":0,"artwork":{"icon":"%[1]s/art/g1/icon.png"}},
		{"id":"g2","name":"Favorite","playtime":900,"artwork":{"icon":"%[1]s/art/g2/icon.png","header":"%[1]s/art/g2/header.png"}},
		{"id":"g3","name":"Sometimes","playtime":60,"artwork":{"logo":"%[1]s/missing/g3/logo.png","library":"%[1]s/art/g3/library.png"}}
	]`, origin.URL)
	gamesPath := filepath.Join(dir, "games.json")
	require.NoError(t, os.WriteFile(gamesPath, []byte(games), 0o600))

	cfg := fmt.Sprintf(`
cache:
  provider: bbolt
  bbolt:
    filename: %s
rate_limit:
  requests_per_second: 1000
artwork:
  inter_request_delay: 0s
fetcher:
  timeout: 2s
`, filepath.Join(dir, "shelfcache.db"))
	configPath := filepath.Join(dir, "shelfcache.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	return &testEnv{configPath: configPath, gamesPath: gamesPath, origin: origin}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func TestLoadCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "load", "--config", env.configPath, "--source", env.gamesPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "g2"))
	require.True(t, strings.HasPrefix(lines[1], "g3"))
	require.True(t, strings.HasPrefix(lines[2], "g1"))
	require.Contains(t, lines[0], "kmiss")
	require.Contains(t, lines[1], "1/2 artwork")
	require.Contains(t, lines[3], "loaded 3 of 3 games, 1 artwork downloads failed")

	out, err = execute(t, "load", "--config", env.configPath, "--source", env.gamesPath,
		"--json", "--max-games", "2")
	require.NoError(t, err)
	var games []gameSummary
	require.NoError(t, json.Unmarshal([]byte(out), &games))
	require.Len(t, games, 2)
	for _, g := range games {
		require.Equal(t, "hit", g.Cache)
	}
	require.Equal(t, []string{"icon", "header"}, games[0].Artwork)
	require.Equal(t, []string{"library"}, games[1].Artwork)
	require.Equal(t, []string{"logo"}, games[1].Missing)
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, "load", "--config", env.configPath, "--source", env.gamesPath,
		"--priority", "recent")
	require.NoError(t, err)

	out, err := execute(t, "stats", "--config", env.configPath, "--json")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, float64(3), st["entries"])
	require.Equal(t, "bbolt", st["provider"])

	out, err = execute(t, "clear", "--config", env.configPath)
	require.NoError(t, err)
	require.Equal(t, "cleared 3 entries\n", out)

	out, err = execute(t, "stats", "--config", env.configPath)
	require.NoError(t, err)
	require.Contains(t, out, "entries:     0")
}

func TestValidateCommand(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, "validate-config", "--config", env.configPath)
	require.ErrorIs(t, err, options.ErrMissingPath)

	_, err = execute(t, "load", "--config", env.configPath, "--priority", "alphabetical",
		"--source", env.gamesPath)
	require.Error(t, err)

	_, err = execute(t, "stats", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "version:")

	out, err = execute(t, "--version")
	require.NoError(t, err)
	require.Contains(t, out, "version:")
}
