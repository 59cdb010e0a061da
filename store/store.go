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

// Package store defines the backing store contract a replicated map writes through to.
//
// The backing store holds the authoritative contents of a logical map and is shared by
// every instance of that map. Implementations live in the sub-packages: memory, redis,
// olric, nats and etcd.
package store

import "context"

// Store is the shared remote map behind a replicated map.
//
// Every call may block on network I/O and must honor the context deadline.
// Implementations must be safe for concurrent use.
type Store[K comparable, V any] interface {
	// Get returns the value stored under key. The boolean is false when the key is absent.
	Get(ctx context.Context, key K) (V, bool, error)
	// Put stores value under key without reading the previous value.
	Put(ctx context.Context, key K, value V) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key K) error
	// Clear deletes every key of the map.
	Clear(ctx context.Context) error
	// PutAll upserts every entry of the mapping.
	PutAll(ctx context.Context, entries map[K]V) error
	// ReadAll returns the whole content of the map in one bulk operation.
	ReadAll(ctx context.Context) (map[K]V, error)
}
