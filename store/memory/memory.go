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

// Package memory provides a Store that lives in the current process.
//
// Several replicated maps sharing one Store instance behave like instances of the
// same logical map sharing a remote store, which makes it the store of choice for
// tests and for single-process deployments.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/tochemey/replicamap/store"
)

// Store is an in-process backing store
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// enforce compilation error
var _ store.Store[string, any] = (*Store[string, any])(nil)

// New creates an empty Store
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{data: make(map[K]V)}
}

// Get returns the value stored under key
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()
	return value, ok, nil
}

// Put stores value under key
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// Remove deletes key
func (s *Store[K, V]) Remove(ctx context.Context, key K) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Clear deletes every key
func (s *Store[K, V]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	clear(s.data)
	s.mu.Unlock()
	return nil
}

// PutAll upserts every entry of the mapping
func (s *Store[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	maps.Copy(s.data, entries)
	s.mu.Unlock()
	return nil
}

// ReadAll returns a copy of the whole content
func (s *Store[K, V]) ReadAll(ctx context.Context) (map[K]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snapshot := maps.Clone(s.data)
	s.mu.RUnlock()
	return snapshot, nil
}

// Len returns the number of entries
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
