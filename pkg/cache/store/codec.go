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
	"encoding/json"

	"github.com/tinylib/msgp/msgp"
)

// Codec converts cached values to and from the bytes written in snapshots
type Codec[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// JSONCodec encodes values with encoding/json. It is the default Codec.
type JSONCodec[T any] struct{}

// Marshal implements Codec
func (JSONCodec[T]) Marshal(v T) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec
func (JSONCodec[T]) Unmarshal(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

type msgpValue[T any] interface {
	*T
	msgp.Marshaler
	msgp.Unmarshaler
}

// MsgpCodec encodes values whose pointer type implements the msgp
// Marshaler and Unmarshaler interfaces
type MsgpCodec[T any, PT msgpValue[T]] struct{}

// Marshal implements Codec
func (MsgpCodec[T, PT]) Marshal(v T) ([]byte, error) {
	return PT(&v).MarshalMsg(nil)
}

// Unmarshal implements Codec
func (MsgpCodec[T, PT]) Unmarshal(b []byte) (T, error) {
	var v T
	_, err := PT(&v).UnmarshalMsg(b)
	return v, err
}

// SizeEstimator returns the estimated in-memory size of a value, in bytes
type SizeEstimator[T any] func(T) (int64, error)
