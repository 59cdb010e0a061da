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

// Package redis provides a Store keeping the entries of a map in a redis hash.
package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/store"
)

var errNilClient = errors.New("redis client is not defined")

// Store keeps every entry of a map as a field of one redis hash, so that a bulk
// read is a single HGETALL and a clear is a single DEL.
type Store[K comparable, V any] struct {
	client redis.UniversalClient
	key    string
	codec  codec.Codec[K, V]
}

// enforce compilation error
var _ store.Store[string, any] = (*Store[string, any])(nil)

// New creates a Store writing to the hash named key. The client is owned by the caller.
func New[K comparable, V any](client redis.UniversalClient, key string, c codec.Codec[K, V]) (*Store[K, V], error) {
	if client == nil {
		return nil, errNilClient
	}

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("redis hash key is required")
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	return &Store[K, V]{client: client, key: key, codec: c}, nil
}

// Get returns the value stored under key
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	field, err := s.codec.EncodeKey(key)
	if err != nil {
		return zero, false, err
	}

	raw, err := s.client.HGet(ctx, s.key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, err
	}

	value, err := s.codec.DecodeValue(raw)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Put stores value under key
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	field, err := s.codec.EncodeKey(key)
	if err != nil {
		return err
	}

	raw, err := s.codec.EncodeValue(value)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key, field, raw).Err()
}

// Remove deletes key
func (s *Store[K, V]) Remove(ctx context.Context, key K) error {
	field, err := s.codec.EncodeKey(key)
	if err != nil {
		return err
	}
	return s.client.HDel(ctx, s.key, field).Err()
}

// Clear deletes the whole hash
func (s *Store[K, V]) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// PutAll stores every entry with a single HSET
func (s *Store[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if len(entries) == 0 {
		return nil
	}

	encoded, err := codec.EncodeEntries(s.codec, entries)
	if err != nil {
		return err
	}

	fields := make(map[string]any, len(encoded))
	for field, raw := range encoded {
		fields[field] = raw
	}
	return s.client.HSet(ctx, s.key, fields).Err()
}

// ReadAll returns the whole hash with a single HGETALL
func (s *Store[K, V]) ReadAll(ctx context.Context) (map[K]V, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}

	encoded := make(map[string][]byte, len(all))
	for field, raw := range all {
		encoded[field] = []byte(raw)
	}
	return codec.DecodeEntries(s.codec, encoded)
}
