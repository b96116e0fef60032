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

package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupStatusString(t *testing.T) {
	cases := []struct {
		lookup LookupStatus
		want   string
	}{
		{LookupStatusHit, "hit"},
		{LookupStatusKeyMiss, "kmiss"},
		{LookupStatusExpired, "expired"},
		{LookupStatusBypass, "bypass"},
		{LookupStatus(99), "99"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.lookup.String())
	}
}

func TestFromString(t *testing.T) {
	for name, s := range cacheLookupStatusNames {
		got, ok := FromString(name)
		require.True(t, ok)
		require.Equal(t, s, got)
		require.Equal(t, name, got.String())
	}
	_, ok := FromString("nope")
	require.False(t, ok)
}

func TestIsHit(t *testing.T) {
	require.True(t, LookupStatusHit.IsHit())
	require.False(t, LookupStatusExpired.IsHit())
}
