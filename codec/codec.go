// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package codec turns map keys and values into the representation the remote
// stores and buses carry over the wire.
package codec

import (
	"encoding/json"
	"fmt"
)

// Codec encodes and decodes the keys and values of a replicated map.
// Keys are rendered as strings because every supported store addresses entries
// by a string field or key. Implementations must be safe for concurrent use.
type Codec[K comparable, V any] interface {
	// EncodeKey returns the string form of the key
	EncodeKey(key K) (string, error)
	// DecodeKey parses a key produced by EncodeKey
	DecodeKey(raw string) (K, error)
	// EncodeValue returns the binary form of the value
	EncodeValue(value V) ([]byte, error)
	// DecodeValue parses a value produced by EncodeValue
	DecodeValue(raw []byte) (V, error)
}

// JSON returns a Codec that encodes values as JSON. String keys are kept verbatim
// so that entries stay readable in the store; any other key type is JSON encoded.
func JSON[K comparable, V any]() Codec[K, V] {
	return jsonCodec[K, V]{}
}

type jsonCodec[K comparable, V any] struct{}

// enforce compilation error
var _ Codec[string, any] = jsonCodec[string, any]{}

func (jsonCodec[K, V]) EncodeKey(key K) (string, error) {
	if s, ok := any(key).(string); ok {
		return s, nil
	}

	bytea, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("codec: encode key: %w", err)
	}
	return string(bytea), nil
}

func (jsonCodec[K, V]) DecodeKey(raw string) (K, error) {
	var key K
	if _, ok := any(key).(string); ok {
		return any(raw).(K), nil
	}

	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return key, fmt.Errorf("codec: decode key %q: %w", raw, err)
	}
	return key, nil
}

func (jsonCodec[K, V]) EncodeValue(value V) ([]byte, error) {
	bytea, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("codec: encode value: %w", err)
	}
	return bytea, nil
}

func (jsonCodec[K, V]) DecodeValue(raw []byte) (V, error) {
	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("codec: decode value: %w", err)
	}
	return value, nil
}

// String returns a Codec for string keys and string values. Values are stored as
// their raw bytes.
func String() Codec[string, string] {
	return stringCodec{}
}

type stringCodec struct{}

func (stringCodec) EncodeKey(key string) (string, error)     { return key, nil }
func (stringCodec) DecodeKey(raw string) (string, error)     { return raw, nil }
func (stringCodec) EncodeValue(value string) ([]byte, error) { return []byte(value), nil }
func (stringCodec) DecodeValue(raw []byte) (string, error)   { return string(raw), nil }

// EncodeEntries encodes a whole mapping with the given codec
func EncodeEntries[K comparable, V any](c Codec[K, V], entries map[K]V) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(entries))
	for k, v := range entries {
		key, err := c.EncodeKey(k)
		if err != nil {
			return nil, err
		}
		value, err := c.EncodeValue(v)
		if err != nil {
			return nil, err
		}
		encoded[key] = value
	}
	return encoded, nil
}

// DecodeEntries decodes a mapping produced by EncodeEntries
func DecodeEntries[K comparable, V any](c Codec[K, V], encoded map[string][]byte) (map[K]V, error) {
	entries := make(map[K]V, len(encoded))
	for k, v := range encoded {
		key, err := c.DecodeKey(k)
		if err != nil {
			return nil, err
		}
		value, err := c.DecodeValue(v)
		if err != nil {
			return nil, err
		}
		entries[key] = value
	}
	return entries, nil
}
