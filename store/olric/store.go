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

// Package olric provides a Store keeping the entries of a map in an olric DMap.
package olric

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tochemey/olric"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/store"
)

const defaultConcurrency = 16

var errNilClient = errors.New("olric client is not defined")

// Store keeps every entry of a map in one olric DMap.
//
// A DMap has no bulk read nor bulk write, so ReadAll scans the keys and fetches the
// values concurrently, and PutAll writes concurrently. Neither is atomic, and ReadAll
// costs one round trip per key on top of the scan instead of a single bulk read.
// Prefer another Store for large maps that resync often.
type Store[K comparable, V any] struct {
	dmap        olric.DMap
	codec       codec.Codec[K, V]
	concurrency int
}

// enforce compilation error
var _ store.Store[string, any] = (*Store[string, any])(nil)

// Option configures the Store
type Option func(*options)

type options struct {
	concurrency int
}

// WithConcurrency bounds the number of concurrent DMap calls of PutAll and ReadAll
func WithConcurrency(concurrency int) Option {
	return func(o *options) {
		if concurrency > 0 {
			o.concurrency = concurrency
		}
	}
}

// New creates a Store on top of the DMap named dmapName
func New[K comparable, V any](client olric.Client, dmapName string, c codec.Codec[K, V], opts ...Option) (*Store[K, V], error) {
	if client == nil {
		return nil, errNilClient
	}

	if strings.TrimSpace(dmapName) == "" {
		return nil, errors.New("olric dmap name is required")
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	o := &options{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(o)
	}

	dmap, err := client.NewDMap(dmapName)
	if err != nil {
		return nil, err
	}

	return &Store[K, V]{dmap: dmap, codec: c, concurrency: o.concurrency}, nil
}

// Get returns the value stored under key
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return zero, false, err
	}

	raw, ok, err := s.get(ctx, encodedKey)
	if err != nil || !ok {
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
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return err
	}

	raw, err := s.codec.EncodeValue(value)
	if err != nil {
		return err
	}
	return s.dmap.Put(ctx, encodedKey, raw)
}

// Remove deletes key
func (s *Store[K, V]) Remove(ctx context.Context, key K) error {
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return err
	}

	_, err = s.dmap.Delete(ctx, encodedKey)
	return err
}

// Clear deletes every key of the DMap
func (s *Store[K, V]) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	_, err = s.dmap.Delete(ctx, keys...)
	return err
}

// PutAll stores every entry
func (s *Store[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if len(entries) == 0 {
		return nil
	}

	encoded, err := codec.EncodeEntries(s.codec, entries)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for key, raw := range encoded {
		eg.Go(func() error {
			return s.dmap.Put(ctx, key, raw)
		})
	}
	return eg.Wait()
}

// ReadAll returns every entry of the DMap. It scans the keys then fetches each value,
// at most concurrency at a time.
func (s *Store[K, V]) ReadAll(ctx context.Context) (map[K]V, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	encoded := make(map[string][]byte, len(keys))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for _, key := range keys {
		eg.Go(func() error {
			raw, ok, err := s.get(ctx, key)
			if err != nil || !ok {
				return err
			}
			mu.Lock()
			encoded[key] = raw
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return codec.DecodeEntries(s.codec, encoded)
}

func (s *Store[K, V]) get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := s.dmap.Get(ctx, key)
	if err != nil {
		// the key may have been removed since it was scanned
		if errors.Is(err, olric.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	raw, err := resp.Byte()
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *Store[K, V]) keys(ctx context.Context) ([]string, error) {
	iter, err := s.dmap.Scan(ctx)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, iter.Key())
	}
	return keys, nil
}
