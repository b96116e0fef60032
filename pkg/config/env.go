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
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by shelfcache
const EnvPrefix = "SHELFCACHE_"

// loadEnvVars overlays SHELFCACHE_* environment variables onto the config.
// A nil environ reads the process environment.
func (c *Config) loadEnvVars(environ []string) error {
	if environ == nil {
		environ = os.Environ()
	}
	return env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: toMap(environ),
	})
}

func toMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		m[k] = v
	}
	return m
}
