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

package providers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProviderString(t *testing.T) {
	require.Equal(t, "zstd", Zstandard.String())
	require.Equal(t, "br", Brotli.String())
	require.Equal(t, "snappy", Snappy.String())
	require.Equal(t, "none", Identity.String())
	require.Equal(t, "77", Provider(77).String())
}

func TestProviderID(t *testing.T) {
	cases := map[string]Provider{
		"zstd":      Zstandard,
		"Zstandard": Zstandard,
		"brotli":    Brotli,
		" br ":      Brotli,
		"snappy":    Snappy,
		"":          Identity,
		"none":      Identity,
	}
	for in, want := range cases {
		got, ok := ProviderID(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := ProviderID("lzma")
	require.False(t, ok)
}

func TestIsKnown(t *testing.T) {
	require.True(t, Snappy.IsKnown())
	require.False(t, Provider(64).IsKnown())
}
