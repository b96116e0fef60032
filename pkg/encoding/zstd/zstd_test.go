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

package zstd

import (
	"bytes"
	"testing"
)

func TestDecodeEncode(t *testing.T) {
	expected := bytes.Repeat([]byte("shelfcache"), 64)
	b, err := Encode(expected)
	if err != nil {
		t.Error(err)
	}
	if len(b) >= len(expected) {
		t.Errorf("expected compression, got %d >= %d", len(b), len(expected))
	}
	b, err = Decode(b)
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(b, expected) {
		t.Errorf("expected %s got %s", expected, b)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	if _, err := Decode([]byte("not zstd")); err == nil {
		t.Error("expected error")
	}
}
