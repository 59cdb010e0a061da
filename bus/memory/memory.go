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

// Package memory provides an in-process Bus.
//
// Every subscription owns a mailbox and a dispatch goroutine, so a handler never runs
// on the publisher's goroutine and a slow handler never blocks a publisher.
package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/replicamap/bus"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/queue"
	"github.com/tochemey/replicamap/message"
)

var errBusClosed = errors.New("bus is closed")

// Bus is an in-process broker. Maps that share the same Bus instance observe each
// other's messages.
type Bus[K comparable, V any] struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*subscription[K, V]]struct{}
	closed        *atomic.Bool
}

// enforce compilation error
var _ bus.Bus[string, any] = (*Bus[string, any])(nil)

// New creates a Bus
func New[K comparable, V any]() *Bus[K, V] {
	return &Bus[K, V]{
		subscriptions: make(map[string]map[*subscription[K, V]]struct{}),
		closed:        atomic.NewBool(false),
	}
}

// Publish enqueues the message on every subscription of the channel
func (b *Bus[K, V]) Publish(ctx context.Context, channel string, msg *message.Message[K, V]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.closed.Load() {
		return gerrors.NewErrBusUnavailable("publish", errBusClosed)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscriptions[channel] {
		sub.mailbox.Push(msg)
	}
	return nil
}

// Subscribe registers the handler on the channel
func (b *Bus[K, V]) Subscribe(ctx context.Context, channel string, handler bus.Handler[K, V]) (bus.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.closed.Load() {
		return nil, gerrors.NewErrBusUnavailable("subscribe", errBusClosed)
	}

	sub := &subscription[K, V]{
		bus:     b,
		channel: channel,
		handler: handler,
		mailbox: queue.New[*message.Message[K, V]](),
		done:    make(chan struct{}),
		ctx:     context.WithoutCancel(ctx),
	}

	b.mu.Lock()
	subs, ok := b.subscriptions[channel]
	if !ok {
		subs = make(map[*subscription[K, V]]struct{})
		b.subscriptions[channel] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()

	go sub.dispatch()
	return sub, nil
}

// Subscribers returns the number of live subscriptions on the channel
func (b *Bus[K, V]) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[channel])
}

// Close cancels every subscription. Messages already queued are still delivered.
func (b *Bus[K, V]) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	b.mu.Lock()
	subs := b.subscriptions
	b.subscriptions = make(map[string]map[*subscription[K, V]]struct{})
	b.mu.Unlock()

	for _, channelSubs := range subs {
		for sub := range channelSubs {
			sub.mailbox.Close()
			<-sub.done
		}
	}
}

func (b *Bus[K, V]) remove(sub *subscription[K, V]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subscriptions[sub.channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subscriptions, sub.channel)
		}
	}
}

type subscription[K comparable, V any] struct {
	bus     *Bus[K, V]
	channel string
	handler bus.Handler[K, V]
	mailbox *queue.Queue[*message.Message[K, V]]
	done    chan struct{}
	ctx     context.Context
}

func (s *subscription[K, V]) Channel() string {
	return s.channel
}

func (s *subscription[K, V]) Unsubscribe(ctx context.Context) error {
	s.bus.remove(s)
	s.mailbox.Close()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *subscription[K, V]) dispatch() {
	defer close(s.done)
	for {
		msg, ok := s.mailbox.Wait()
		if !ok {
			return
		}
		s.handler(s.ctx, msg)
	}
}
