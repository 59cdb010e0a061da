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

// Package nats provides a Store keeping the entries of a map in a NATS JetStream
// KeyValue bucket.
package nats

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/store"
)

// Store keeps every entry of a map in one JetStream KeyValue bucket.
//
// Encoded keys are base64 (URL alphabet, no padding) encoded because KeyValue keys
// only accept a restricted set of characters. ReadAll streams the latest value of
// every key through a single watcher.
type Store[K comparable, V any] struct {
	config *Config
	kv     nats.KeyValue
	codec  codec.Codec[K, V]
}

// enforce compilation error
var _ store.Store[string, any] = (*Store[string, any])(nil)

// New creates a Store, creating the bucket when it does not exist yet.
// The connection is owned by the caller.
func New[K comparable, V any](conn *nats.Conn, config *Config, c codec.Codec[K, V]) (*Store[K, V], error) {
	if conn == nil {
		return nil, errors.New("store/nats: connection is nil")
	}

	if config == nil {
		return nil, errors.New("store/nats: config is nil")
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("store/nats: jetstream: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      config.Bucket,
			Description: config.Description,
			Replicas:    config.Replicas,
		})
		if err != nil {
			// another instance may have created the bucket in the meantime
			if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
				kv, err = js.KeyValue(config.Bucket)
			}

			if err != nil {
				return nil, fmt.Errorf("store/nats: create bucket: %w", err)
			}
		}
	}

	return &Store[K, V]{config: config, kv: kv, codec: c}, nil
}

// Get returns the value stored under key
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	encodedKey, err := s.encodeKey(key)
	if err != nil {
		return zero, false, err
	}

	entry, err := s.kv.Get(encodedKey)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("store/nats: get: %w", err)
	}

	value, err := s.codec.DecodeValue(entry.Value())
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Put stores value under key
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encodedKey, err := s.encodeKey(key)
	if err != nil {
		return err
	}

	raw, err := s.codec.EncodeValue(value)
	if err != nil {
		return err
	}

	if _, err := s.kv.Put(encodedKey, raw); err != nil {
		return fmt.Errorf("store/nats: put: %w", err)
	}
	return nil
}

// Remove deletes key
func (s *Store[K, V]) Remove(ctx context.Context, key K) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encodedKey, err := s.encodeKey(key)
	if err != nil {
		return err
	}
	return s.delete(encodedKey)
}

// Clear deletes every key of the bucket
func (s *Store[K, V]) Clear(ctx context.Context) error {
	lister, err := s.kv.ListKeys(nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("store/nats: list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Concurrency)
	for key := range lister.Keys() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.delete(key)
		})
	}
	return eg.Wait()
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
	eg.SetLimit(s.config.Concurrency)
	for key, raw := range encoded {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.kv.Put(base64.RawURLEncoding.EncodeToString([]byte(key)), raw); err != nil {
				return fmt.Errorf("store/nats: put: %w", err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// ReadAll returns the latest value of every key
func (s *Store[K, V]) ReadAll(ctx context.Context) (map[K]V, error) {
	watcher, err := s.kv.WatchAll(nats.IgnoreDeletes(), nats.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("store/nats: watch: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	encoded := make(map[string][]byte)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, errors.New("store/nats: watcher stopped before the initial values were read")
			}

			// a nil entry marks the end of the initial values
			if entry == nil {
				return codec.DecodeEntries(s.codec, encoded)
			}

			key, err := base64.RawURLEncoding.DecodeString(entry.Key())
			if err != nil {
				return nil, fmt.Errorf("store/nats: decode key %q: %w", entry.Key(), err)
			}
			encoded[string(key)] = entry.Value()
		}
	}
}

func (s *Store[K, V]) encodeKey(key K) (string, error) {
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString([]byte(encodedKey)), nil
}

func (s *Store[K, V]) delete(key string) error {
	if err := s.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("store/nats: delete: %w", err)
	}
	return nil
}
