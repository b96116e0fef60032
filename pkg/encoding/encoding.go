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

// Package encoding applies the configured compression to persisted payloads.
// Encoded payloads carry their provider as a leading byte, so a payload
// written under one configuration can be read back under another.
package encoding

import (
	"errors"
	"fmt"

	"github.com/trickstercache/shelfcache/pkg/encoding/brotli"
	"github.com/trickstercache/shelfcache/pkg/encoding/providers"
	"github.com/trickstercache/shelfcache/pkg/encoding/snappy"
	"github.com/trickstercache/shelfcache/pkg/encoding/zstd"
)

var (
	// ErrEmptyPayload is returned when decoding a zero-length payload
	ErrEmptyPayload = errors.New("empty payload")
	// ErrUnknownProvider is returned for payloads tagged with an unsupported encoding
	ErrUnknownProvider = errors.New("unknown encoding provider")
)

// Encode compresses in with the provider and prefixes the provider byte
func Encode(p providers.Provider, in []byte) ([]byte, error) {
	var body []byte
	var err error
	switch p {
	case providers.Identity:
		body = in
	case providers.Snappy:
		body, err = snappy.Encode(in)
	case providers.Zstandard:
		body, err = zstd.Encode(in)
	case providers.Brotli:
		body, err = brotli.Encode(in)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, len(body)+1)
	out[0] = byte(p)
	return append(out, body...), nil
}

// Decode reads the provider byte and decompresses the remainder
func Decode(in []byte) ([]byte, error) {
	if len(in) == 0 {
		return nil, ErrEmptyPayload
	}
	p, body := providers.Provider(in[0]), in[1:]
	switch p {
	case providers.Identity:
		return body, nil
	case providers.Snappy:
		return snappy.Decode(body)
	case providers.Zstandard:
		return zstd.Decode(body)
	case providers.Brotli:
		return brotli.Decode(body)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
}
