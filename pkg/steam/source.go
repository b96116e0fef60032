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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/trickstercache/shelfcache/pkg/fetch"
	"github.com/trickstercache/shelfcache/pkg/library"
	"github.com/trickstercache/shelfcache/pkg/observability/logging"
	"github.com/trickstercache/shelfcache/pkg/observability/tracing"
	"github.com/trickstercache/shelfcache/pkg/ratelimit"
	"github.com/trickstercache/shelfcache/pkg/steam/options"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxResponseBytes caps a game list response
const maxResponseBytes = 32 * 1024 * 1024

var (
	// ErrUnknownFormat is returned when a game list file is neither a list of
	// store games nor a GetOwnedGames response
	ErrUnknownFormat = errors.New("unrecognized game list format")
	// ErrAPIStatus is returned for a non-2xx game list response
	ErrAPIStatus = errors.New("unexpected game list response status")
)

// Source returns the games of a library
type Source interface {
	Games(ctx context.Context) ([]library.Game, error)
}

// New returns the Source described by o. The limiter paces api requests and
// may be nil.
func New(o *options.Options, client fetch.Doer, limiter *ratelimit.Limiter,
	tracer *tracing.Tracer, logger logging.Logger) (Source, error) {
	if o == nil {
		o = options.New()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Type == options.TypeAPI {
		return NewAPISource(o, client, limiter, tracer, logger), nil
	}
	return NewFileSource(o.Path, NewLocators(o)), nil
}

// FileSource reads games from a JSON file
type FileSource struct {
	path     string
	locators Locators
}

// NewFileSource returns a FileSource reading path
func NewFileSource(path string, l Locators) *FileSource {
	return &FileSource{path: path, locators: l}
}

// Games reads and normalizes the file. It accepts either a JSON array of
// store games or a GetOwnedGames response document.
func (s *FileSource) Games(_ context.Context) ([]library.Game, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return s.locators.Decode(b)
}

// Decode normalizes a game list document
func (l Locators) Decode(b []byte) ([]library.Game, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, ErrUnknownFormat
	}
	switch b[0] {
	case '[':
		var games []StoreGame
		if err := json.Unmarshal(b, &games); err != nil {
			return nil, err
		}
		return l.StoreGames(games), nil
	case '{':
		var r ownedGamesResponse
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, err
		}
		return l.OwnedGames(r.Response.Games), nil
	}
	return nil, ErrUnknownFormat
}

// APISource requests the owned games of a Steam user through the proxy
type APISource struct {
	client   fetch.Doer
	baseURL  string
	steamID  string
	locators Locators
	tracer   *tracing.Tracer
	logger   logging.Logger
	list     ratelimit.Operation[string, []OwnedGame]
}

// NewAPISource returns an APISource. Requests are paced by limiter when it
// is not nil.
func NewAPISource(o *options.Options, client fetch.Doer, limiter *ratelimit.Limiter,
	tracer *tracing.Tracer, logger logging.Logger) *APISource {
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	s := &APISource{
		client:   client,
		baseURL:  strings.TrimSuffix(o.ProxyURL, "/"),
		steamID:  o.SteamID,
		locators: NewLocators(o),
		tracer:   tracer,
		logger:   logger,
	}
	s.list = s.ownedGames
	if limiter != nil {
		s.list = ratelimit.Limited[string, []OwnedGame](limiter, s.list)
	}
	return s
}

// Games requests and normalizes the owned games
func (s *APISource) Games(ctx context.Context) ([]library.Game, error) {
	games, err := s.list(ctx, s.steamID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("owned games retrieved", logging.Pairs{"steamID": s.steamID, "count": len(games)})
	return s.locators.OwnedGames(games), nil
}

func (s *APISource) ownedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	ctx, span := tracing.NewChildSpan(ctx, s.tracer, "GetOwnedGames",
		attribute.String("steam.id", steamID))
	if span != nil {
		defer span.End()
	}
	q := url.Values{
		"steamid":                   {steamID},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/GetOwnedGames?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		if span != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	defer resp.Body.Close()
	if span != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		span.SetStatus(tracing.HTTPToCode(resp.StatusCode), "")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrAPIStatus, resp.StatusCode)
	}
	var r ownedGamesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&r); err != nil {
		return nil, err
	}
	return r.Response.Games, nil
}
