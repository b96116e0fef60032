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
	"math"
	"time"
)

const (
	// DefaultRequestsPerSecond paces artwork downloads
	DefaultRequestsPerSecond = 4.0
	// DefaultMaxQueueSize is the advisory waiter cap
	DefaultMaxQueueSize = 100
)

// ErrInvalidRate is returned when requests_per_second is not a finite
// positive rate with a representable interval
var ErrInvalidRate = errors.New("rate_limit requests_per_second must be a finite value greater than zero")

// Options is a collection of rate limiter configurations
type Options struct {
	// RequestsPerSecond is the maximum release rate
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty" env:"REQUESTS_PER_SECOND"`
	// MaxQueueSize is advisory and not enforced
	MaxQueueSize int `yaml:"max_queue_size,omitempty" env:"MAX_QUEUE_SIZE"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxQueueSize:      DefaultMaxQueueSize,
	}
}

// UnmarshalYAML overlays the YAML document onto the default Options
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	type loadOptions Options
	lo := loadOptions(*(New()))
	if err := unmarshal(&lo); err != nil {
		return err
	}
	*o = Options(lo)
	return nil
}

// Validate returns an error if the Options are unusable
func (o *Options) Validate() error {
	rps := o.RequestsPerSecond
	iv := float64(time.Second) / rps
	if !(rps > 0) || math.IsInf(rps, 0) || !(iv >= 1 && iv < float64(math.MaxInt64)) {
		return ErrInvalidRate
	}
	return nil
}
