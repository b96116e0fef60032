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

package store

import (
	"errors"
	"time"

	"github.com/tinylib/msgp/msgp"
)

// ErrTrailingBytes is returned when a snapshot has data after its last record
var ErrTrailingBytes = errors.New("trailing bytes after snapshot records")

// snapshotRecord is the persisted form of one entry. A snapshot is a msgp
// array of [key, {data, created, accessed, size}] pairs, least recently used
// first.
type snapshotRecord struct {
	key      string
	data     []byte
	created  time.Time
	accessed time.Time
	size     int64
}

const (
	fieldData     = "data"
	fieldCreated  = "created"
	fieldAccessed = "accessed"
	fieldSize     = "size"
)

func marshalSnapshot(recs []snapshotRecord) []byte {
	b := make([]byte, 0, 64*len(recs)+8)
	b = msgp.AppendArrayHeader(b, uint32(len(recs)))
	for _, r := range recs {
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendString(b, r.key)
		b = msgp.AppendMapHeader(b, 4)
		b = msgp.AppendString(b, fieldData)
		b = msgp.AppendBytes(b, r.data)
		b = msgp.AppendString(b, fieldCreated)
		b = msgp.AppendTime(b, r.created)
		b = msgp.AppendString(b, fieldAccessed)
		b = msgp.AppendTime(b, r.accessed)
		b = msgp.AppendString(b, fieldSize)
		b = msgp.AppendInt64(b, r.size)
	}
	return b
}

func unmarshalSnapshot(b []byte) ([]snapshotRecord, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	recs := make([]snapshotRecord, 0, min(int(n), 4096))
	for range n {
		var pair uint32
		pair, b, err = msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return nil, err
		}
		if pair != 2 {
			return nil, msgp.ArrayError{Wanted: 2, Got: pair}
		}
		var r snapshotRecord
		r.key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, err
		}
		var fields uint32
		fields, b, err = msgp.ReadMapHeaderBytes(b)
		if err != nil {
			return nil, err
		}
		for range fields {
			var field []byte
			field, b, err = msgp.ReadMapKeyZC(b)
			if err != nil {
				return nil, err
			}
			switch string(field) {
			case fieldData:
				r.data, b, err = msgp.ReadBytesBytes(b, nil)
			case fieldCreated:
				r.created, b, err = msgp.ReadTimeBytes(b)
			case fieldAccessed:
				r.accessed, b, err = msgp.ReadTimeBytes(b)
			case fieldSize:
				r.size, b, err = msgp.ReadInt64Bytes(b)
			default:
				b, err = msgp.Skip(b)
			}
			if err != nil {
				return nil, err
			}
		}
		recs = append(recs, r)
	}
	if len(b) > 0 {
		return nil, ErrTrailingBytes
	}
	return recs, nil
}
