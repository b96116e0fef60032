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
	"fmt"
)

const (
	// PriorityPlaytime orders games by total playtime
	PriorityPlaytime = "playtime"
	// PriorityRecent orders games by recent playtime, then total playtime
	PriorityRecent = "recent"
)

var (
	// ErrInvalidPriority is returned for an unknown priority name
	ErrInvalidPriority = errors.New("invalid loader priority")
	// ErrNegativeMaxGames is returned when max_games is negative
	ErrNegativeMaxGames = errors.New("max_games cannot be negative")
)

// Options is a collection of library loader configurations
type Options struct {
	// MaxGames limits how many games are loaded; 0 loads all
	MaxGames int `yaml:"max_games,omitempty" env:"MAX_GAMES"`
	// Priority names the ordering policy: playtime or recent
	Priority string `yaml:"priority,omitempty" env:"PRIORITY"`
	// SkipCachingEmpty does not cache artwork results with no blobs
	SkipCachingEmpty bool `yaml:"skip_caching_empty,omitempty" env:"SKIP_CACHING_EMPTY"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{Priority: PriorityPlaytime}
}

// Validate returns an error if the Options are unusable
func (o *Options) Validate() error {
	if o.MaxGames < 0 {
		return ErrNegativeMaxGames
	}
	switch o.Priority {
	case "", PriorityPlaytime, PriorityRecent:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidPriority, o.Priority)
}
