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

package artwork

import (
	"github.com/trickstercache/shelfcache/pkg/fetch"

	"github.com/tinylib/msgp/msgp"
)

// MarshalMsg appends the Result as a msgp map of kind name to
// [content type, data], omitting nil blobs
func (r *Result) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, uint32(r.Count()))
	for _, k := range Kinds {
		blob := r.Get(k)
		if blob == nil {
			continue
		}
		b = msgp.AppendString(b, k.String())
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendString(b, blob.ContentType)
		b = msgp.AppendBytes(b, blob.Data)
	}
	return b, nil
}

// UnmarshalMsg reads a Result written by MarshalMsg. Unknown kinds are skipped.
func (r *Result) UnmarshalMsg(b []byte) ([]byte, error) {
	*r = Result{}
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range n {
		var name string
		name, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		k, ok := kindByName(name)
		if !ok {
			if b, err = msgp.Skip(b); err != nil {
				return b, err
			}
			continue
		}
		var sz uint32
		sz, b, err = msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return b, err
		}
		if sz != 2 {
			return b, msgp.ArrayError{Wanted: 2, Got: sz}
		}
		blob := &fetch.Blob{}
		if blob.ContentType, b, err = msgp.ReadStringBytes(b); err != nil {
			return b, err
		}
		if blob.Data, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
			return b, err
		}
		r.Set(k, blob)
	}
	return b, nil
}

// Msgsize returns an upper bound on the encoded size of the Result
func (r *Result) Msgsize() int {
	s := msgp.MapHeaderSize
	for _, k := range Kinds {
		if blob := r.Get(k); blob != nil {
			s += msgp.StringPrefixSize + len(k.String()) + msgp.ArrayHeaderSize +
				msgp.StringPrefixSize + len(blob.ContentType) + msgp.BytesPrefixSize + len(blob.Data)
		}
	}
	return s
}

func kindByName(name string) (Kind, bool) {
	for k, v := range kindNames {
		if v == name {
			return k, true
		}
	}
	return 0, false
}
