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

package replication

import (
	"github.com/tochemey/replicamap/internal/cache"
	"github.com/tochemey/replicamap/message"
)

// applier applies the payload of a remote message to the local cache
type applier[K comparable, V any] struct {
	cache *cache.Cache[K, V]
}

// enforce compilation error
var _ message.Visitor[string, any] = applier[string, any]{}

func (a applier[K, V]) VisitPut(key K, value V) {
	a.cache.Put(key, value)
}

func (a applier[K, V]) VisitRemove(key K) {
	a.cache.Remove(key)
}

func (a applier[K, V]) VisitClear() {
	a.cache.Clear()
}

func (a applier[K, V]) VisitPutAll(entries map[K]V) {
	a.cache.PutAll(entries)
}
