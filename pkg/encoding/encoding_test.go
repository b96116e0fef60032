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

package encoding

import (
	"bytes"
	"testing"

	"github.com/trickstercache/shelfcache/pkg/encoding/providers"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := bytes.Repeat([]byte("header.jpg library_600x900.jpg "), 100)
	for _, p := range []providers.Provider{providers.Identity, providers.Snappy,
		providers.Zstandard, providers.Brotli} {
		t.Run(p.String(), func(t *testing.T) {
			b, err := Encode(p, in)
			require.NoError(t, err)
			require.Equal(t, byte(p), b[0])
			out, err := Decode(b)
			require.NoError(t, err)
			require.Equal(t, in, out)
		})
	}
}

func TestEncodeUnknown(t *testing.T) {
	_, err := Encode(providers.Provider(3), []byte("x"))
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Decode([]byte{3, 'x'})
	require.ErrorIs(t, err, ErrUnknownProvider)

	_, err = Decode(append([]byte{byte(providers.Snappy)}, []byte("garbage!")...))
	require.Error(t, err)
}
