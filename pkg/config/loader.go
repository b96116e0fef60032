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

package config

import (
	"errors"
	"os"
)

// Load returns the Application Configuration, starting with a default config,
// then overriding with any provided config file, then env vars, and finally
// flags. A missing file is an error only when its path was provided.
// The source section is validated by the commands that read games.
func Load(flags *Flags) (*Config, error) {
	return load(flags, nil)
}

func load(flags *Flags, environ []string) (*Config, error) {
	if flags == nil {
		flags = &Flags{}
	}
	if flags.ConfigPath != "" {
		flags.customPath = true
	} else {
		flags.ConfigPath = DefaultConfigPath
	}
	c := NewConfig()
	if err := c.loadFile(flags.ConfigPath); err != nil &&
		(flags.customPath || !errors.Is(err, os.ErrNotExist)) {
		return nil, err
	}
	if err := c.loadEnvVars(environ); err != nil {
		return nil, err
	}
	c.loadFlags(flags)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
