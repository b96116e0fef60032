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

const (
	// DefaultSQLiteFile is the default SQLite database path
	DefaultSQLiteFile = "shelfcache.sqlite"
	// DefaultSQLiteTable is the default table holding shelfcache records
	DefaultSQLiteTable = "shelfcache_kv"
	// DefaultBusyTimeoutMS is the default SQLite busy timeout
	DefaultBusyTimeoutMS = 5000
)

// Options is a collection of Configurations for storing cached data in SQLite
type Options struct {
	// Filename is the path to the SQLite database file
	Filename string `yaml:"filename,omitempty" env:"FILENAME"`
	// Table is the name of the key-value table
	Table string `yaml:"table,omitempty" env:"TABLE"`
	// BusyTimeoutMS is how long a writer waits on a locked database
	BusyTimeoutMS int `yaml:"busy_timeout_ms,omitempty" env:"BUSY_TIMEOUT_MS"`
}

// New returns a reference to a new SQLite Options
func New() *Options {
	return &Options{
		Filename:      DefaultSQLiteFile,
		Table:         DefaultSQLiteTable,
		BusyTimeoutMS: DefaultBusyTimeoutMS,
	}
}
