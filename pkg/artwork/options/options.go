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
	"time"
)

// DefaultInterRequestDelay is the pause after each artwork download
const DefaultInterRequestDelay = 100 * time.Millisecond

// ErrNegativeDelay is returned when the inter-request delay is negative
var ErrNegativeDelay = errors.New("inter_request_delay cannot be negative")

// Options is a collection of artwork coordinator configurations
type Options struct {
	// InterRequestDelay is slept after every download, including the last
	InterRequestDelay time.Duration `yaml:"inter_request_delay,omitempty" env:"INTER_REQUEST_DELAY"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{InterRequestDelay: DefaultInterRequestDelay}
}

// Validate returns an error if the Options are unusable
func (o *Options) Validate() error {
	if o.InterRequestDelay < 0 {
		return ErrNegativeDelay
	}
	return nil
}
