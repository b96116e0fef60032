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
	// DefaultMetricsListenPort is the default port that the HTTP metrics endpoint will listen on
	DefaultMetricsListenPort = 8481
	// DefaultMetricsListenAddress is the default address that the HTTP metrics endpoint will listen on
	DefaultMetricsListenAddress = ""
	// DefaultMetricsMaxConnections is the default cap on concurrent metrics connections
	DefaultMetricsMaxConnections = 16
)

// Options is a collection of Metrics Collection configurations
type Options struct {
	// Enabled starts the metrics listener during long-running commands
	Enabled bool `yaml:"enabled,omitempty" env:"ENABLED"`
	// ListenAddress is IP address from which the Application Metrics are available for pulling at /metrics
	ListenAddress string `yaml:"listen_address,omitempty" env:"LISTEN_ADDRESS"`
	// ListenPort is TCP Port from which the Application Metrics are available for pulling at /metrics
	ListenPort int `yaml:"listen_port,omitempty" env:"LISTEN_PORT"`
	// MaxConnections caps concurrent connections to the listener; 0 is unlimited
	MaxConnections int `yaml:"max_connections,omitempty" env:"MAX_CONNECTIONS"`
	// EnablePprof exposes /debug/pprof on the metrics listener
	EnablePprof bool `yaml:"enable_pprof,omitempty" env:"ENABLE_PPROF"`
}

// New returns a new Options with default values
func New() *Options {
	return &Options{
		ListenAddress:  DefaultMetricsListenAddress,
		ListenPort:     DefaultMetricsListenPort,
		MaxConnections: DefaultMetricsMaxConnections,
	}
}

// Clone returns an exact copy of the Options
func (o *Options) Clone() *Options {
	c := *o
	return &c
}
