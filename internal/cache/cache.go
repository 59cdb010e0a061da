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

package cache

import (
	"maps"
	"reflect"
	"slices"
	"sync"
)

// EqualFunc reports whether two values are equal
type EqualFunc[V any] func(a, b V) bool

// Cache is the process-local view of a replicated map.
//
// It is a generic map guarded by a read-write mutex. The write path of the owner,
// the notification receive path and the resync path all go through it concurrently.
// No method performs I/O, so holding the lock never waits on the network.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]V
	equal EqualFunc[V]
}

// New creates an empty Cache. When equal is nil, ContainsValue compares values
// with reflect.DeepEqual.
func New[K comparable, V any](equal EqualFunc[V]) *Cache[K, V] {
	if equal == nil {
		equal = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}
	return &Cache[K, V]{
		data:  make(map[K]V),
		equal: equal,
	}
}

// Get returns the value stored under key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	value, ok := c.data[key]
	c.mu.RUnlock()
	return value, ok
}

// Put stores value under key and returns the previous value, if any
func (c *Cache[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	previous, ok := c.data[key]
	c.data[key] = value
	c.mu.Unlock()
	return previous, ok
}

// Remove deletes key and returns the value it held, if any
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	previous, ok := c.data[key]
	delete(c.data, key)
	c.mu.Unlock()
	return previous, ok
}

// PutAll stores every entry of the mapping
func (c *Cache[K, V]) PutAll(entries map[K]V) {
	c.mu.Lock()
	maps.Copy(c.data, entries)
	c.mu.Unlock()
}

// Replace atomically swaps the whole content for the given entries.
// Readers observe either the old or the new content, never an empty map in between.
func (c *Cache[K, V]) Replace(entries map[K]V) {
	data := maps.Clone(entries)
	if data == nil {
		data = make(map[K]V)
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}

// Clear removes every entry
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	clear(c.data)
	c.mu.Unlock()
}

// Len returns the number of entries
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	l := len(c.data)
	c.mu.RUnlock()
	return l
}

// ContainsKey reports whether key is present
func (c *Cache[K, V]) ContainsKey(key K) bool {
	c.mu.RLock()
	_, ok := c.data[key]
	c.mu.RUnlock()
	return ok
}

// ContainsValue reports whether at least one key maps to value
func (c *Cache[K, V]) ContainsValue(value V) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.data {
		if c.equal(v, value) {
			return true
		}
	}
	return false
}

// Keys returns a snapshot of the keys
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Collect(maps.Keys(c.data))
}

// Values returns a snapshot of the values
func (c *Cache[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Collect(maps.Values(c.data))
}

// Snapshot returns a copy of the whole content
func (c *Cache[K, V]) Snapshot() map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.data)
}

// Range calls f for every entry of a snapshot until f returns false.
// f runs without the lock held, so it may call back into the cache.
func (c *Cache[K, V]) Range(f func(K, V) bool) {
	for k, v := range c.Snapshot() {
		if !f(k, v) {
			return
		}
	}
}
