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

package appinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	Set("shelfcache", "1.2.3", "2026-01-01T00:00:00Z", "abc1234")
	require.Equal(t, "shelfcache", Name)
	require.Equal(t, "1.2.3", Version)
	s := String()
	require.True(t, strings.HasPrefix(s, "shelfcache version: 1.2.3, buildInfo: 2026-01-01T00:00:00Z abc1234"))

	SetServer("shelf-01")
	require.Equal(t, "shelf-01", Server)
}
