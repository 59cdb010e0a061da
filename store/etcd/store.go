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

// Package etcd provides a Store keeping the entries of a map under an etcd key prefix.
package etcd

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/store"
)

// Store keeps every entry of a map as an etcd key under the configured namespace.
// A bulk read is a single prefix range and a clear a single prefix delete.
type Store[K comparable, V any] struct {
	config *Config
	kv     clientv3.KV
	codec  codec.Codec[K, V]
}

// enforce compilation error
var _ store.Store[string, any] = (*Store[string, any])(nil)

// New creates a Store. The client is owned by the caller.
func New[K comparable, V any](client *clientv3.Client, config *Config, c codec.Codec[K, V]) (*Store[K, V], error) {
	if client == nil {
		return nil, errors.New("store/etcd: client is nil")
	}

	if config == nil {
		return nil, errors.New("store/etcd: config is nil")
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Store[K, V]{
		config: config,
		kv:     namespace.NewKV(client.KV, config.Namespace),
		codec:  c,
	}, nil
}

// Get returns the value stored under key
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return zero, false, err
	}

	resp, err := s.kv.Get(ctx, encodedKey)
	if err != nil {
		return zero, false, fmt.Errorf("store/etcd: get: %w", err)
	}

	if len(resp.Kvs) == 0 {
		return zero, false, nil
	}

	value, err := s.codec.DecodeValue(resp.Kvs[0].Value)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Put stores value under key
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	op, err := s.putOp(key, value)
	if err != nil {
		return err
	}

	if _, err := s.kv.Do(ctx, op); err != nil {
		return fmt.Errorf("store/etcd: put: %w", err)
	}
	return nil
}

// Remove deletes key
func (s *Store[K, V]) Remove(ctx context.Context, key K) error {
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return err
	}

	if _, err := s.kv.Delete(ctx, encodedKey); err != nil {
		return fmt.Errorf("store/etcd: delete: %w", err)
	}
	return nil
}

// Clear deletes every key of the namespace
func (s *Store[K, V]) Clear(ctx context.Context) error {
	if _, err := s.kv.Delete(ctx, "", clientv3.WithPrefix()); err != nil {
		return fmt.Errorf("store/etcd: clear: %w", err)
	}
	return nil
}

// PutAll stores every entry in transactions of at most TxnBatchSize puts.
// Each transaction is atomic, the whole call is not when it needs several.
func (s *Store[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if len(entries) == 0 {
		return nil
	}

	ops := make([]clientv3.Op, 0, len(entries))
	for key, value := range entries {
		op, err := s.putOp(key, value)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	for start := 0; start < len(ops); start += s.config.TxnBatchSize {
		end := min(start+s.config.TxnBatchSize, len(ops))
		if _, err := s.kv.Txn(ctx).Then(ops[start:end]...).Commit(); err != nil {
			return fmt.Errorf("store/etcd: put all: %w", err)
		}
	}
	return nil
}

// ReadAll returns every entry of the namespace with a single range request
func (s *Store[K, V]) ReadAll(ctx context.Context) (map[K]V, error) {
	resp, err := s.kv.Get(ctx, "", clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("store/etcd: read all: %w", err)
	}

	encoded := make(map[string][]byte, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		encoded[string(kv.Key)] = kv.Value
	}
	return codec.DecodeEntries(s.codec, encoded)
}

func (s *Store[K, V]) putOp(key K, value V) (clientv3.Op, error) {
	encodedKey, err := s.codec.EncodeKey(key)
	if err != nil {
		return clientv3.Op{}, err
	}

	raw, err := s.codec.EncodeValue(value)
	if err != nil {
		return clientv3.Op{}, err
	}
	return clientv3.OpPut(encodedKey, string(raw)), nil
}
