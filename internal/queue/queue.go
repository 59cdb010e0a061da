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

package queue

import "sync"

// minQueueLen is the smallest capacity that queue may have.
// Must be power of 2 for bitwise modulus: x % n == x & (n - 1).
const minQueueLen = 16

// Queue is an unbounded, thread-safe FIFO backed by a ring buffer.
// Any number of goroutines may Push; Wait is meant for a single consumer.
// Closing the queue stops Push but lets the consumer drain what is left.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	nodes  []T
	head   int
	tail   int
	count  int
	closed bool
}

// New creates an empty Queue
func New[T any]() *Queue[T] {
	q := &Queue[T]{nodes: make([]T, minQueueLen)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds an item to the back of the queue.
// It returns false and drops the item when the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}

	if q.count == len(q.nodes) {
		q.resize(len(q.nodes) << 1)
	}

	q.nodes[q.tail] = item
	q.tail = (q.tail + 1) & (len(q.nodes) - 1)
	q.count++
	q.cond.Signal()
	return true
}

// Wait blocks until an item is available and returns it.
// Once the queue is closed, Wait keeps returning the remaining items and
// then returns false.
func (q *Queue[T]) Wait() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.pop()
}

// Pop removes the item at the front of the queue without blocking
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

// Close stops the queue from accepting new items and wakes up the consumer
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// IsClosed returns true once Close has been called
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[T]) pop() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}

	item := q.nodes[q.head]
	q.nodes[q.head] = zero
	q.head = (q.head + 1) & (len(q.nodes) - 1)
	q.count--

	// shrink when the buffer is a quarter full
	if len(q.nodes) > minQueueLen && (q.count<<2) == len(q.nodes) {
		q.resize(len(q.nodes) >> 1)
	}
	return item, true
}

func (q *Queue[T]) resize(size int) {
	nodes := make([]T, size)
	if q.tail > q.head {
		copy(nodes, q.nodes[q.head:q.tail])
	} else if q.count > 0 {
		n := copy(nodes, q.nodes[q.head:])
		copy(nodes[n:], q.nodes[:q.tail])
	}

	q.head = 0
	q.tail = q.count & (size - 1)
	q.nodes = nodes
}
