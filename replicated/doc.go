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

// Package replicated provides Map, a named key/value map replicated across
// processes.
//
// Every process holds a full copy of the map in memory and serves reads from it.
// A write is applied locally, announced to the other processes on a notification
// bus and persisted to a shared backing store. A process that joins late, or that
// missed notifications, catches up from the store: once when it is created and then
// periodically when a resync interval is configured.
//
//	st, _ := redisstore.New[string, Order](client, "orders", codec.JSON[string, Order]())
//	b, _ := redisbus.New[string, Order](client, codec.JSON[string, Order]())
//	orders, err := replicated.New[string, Order](ctx, "orders", st, b,
//		replicated.WithResyncInterval(30*time.Second))
//
// The map is eventually consistent. Concurrent writes to the same key from different
// processes are not ordered and the last one to arrive wins on each process.
package replicated
