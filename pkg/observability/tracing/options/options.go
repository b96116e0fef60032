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
	// DefaultTracerProvider is the default tracing provider
	DefaultTracerProvider = "none"
	// DefaultTracerServiceName is the default service name reported to the tracer
	DefaultTracerServiceName = "shelfcache"
)

// Options is a Tracing Options collection
type Options struct {
	Name        string            `yaml:"-"`
	Provider    string            `yaml:"provider,omitempty" env:"PROVIDER"`
	ServiceName string            `yaml:"service_name,omitempty" env:"SERVICE_NAME"`
	SampleRate  float64           `yaml:"sample_rate,omitempty" env:"SAMPLE_RATE"`
	Tags        map[string]string `yaml:"tags,omitempty"`

	StdOutOptions *StdOutOptions `yaml:"stdout,omitempty"`
}

// StdOutOptions is a collection of options for the stdout exporter
type StdOutOptions struct {
	PrettyPrint bool `yaml:"pretty_print,omitempty"`
}

// New returns a new *Options with the default values
func New() *Options {
	return &Options{
		Provider:      DefaultTracerProvider,
		ServiceName:   DefaultTracerServiceName,
		SampleRate:    1,
		StdOutOptions: &StdOutOptions{},
	}
}

// Clone returns an exact copy of a tracing config
func (o *Options) Clone() *Options {
	var so *StdOutOptions
	if o.StdOutOptions != nil {
		so = &StdOutOptions{PrettyPrint: o.StdOutOptions.PrettyPrint}
	}
	var tags map[string]string
	if o.Tags != nil {
		tags = make(map[string]string, len(o.Tags))
		for k, v := range o.Tags {
			tags[k] = v
		}
	}
	return &Options{
		Name:          o.Name,
		Provider:      o.Provider,
		ServiceName:   o.ServiceName,
		SampleRate:    o.SampleRate,
		Tags:          tags,
		StdOutOptions: so,
	}
}
