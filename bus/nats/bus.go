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

// Package nats provides a Bus on top of core NATS subjects.
package nats

import (
	"context"
	"errors"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/tochemey/replicamap/bus"
	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/message"
)

// Bus publishes change notifications on NATS subjects named after the channel.
// Core NATS delivery is at most once.
type Bus[K comparable, V any] struct {
	conn   *nats.Conn
	codec  codec.Codec[K, V]
	logger log.Logger
}

// enforce compilation error
var _ bus.Bus[string, any] = (*Bus[string, any])(nil)

// Option configures the Bus
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger used to report undecodable payloads
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Bus using the given connection. The connection is owned by the caller.
func New[K comparable, V any](conn *nats.Conn, c codec.Codec[K, V], opts ...Option) (*Bus[K, V], error) {
	if conn == nil {
		return nil, errors.New("bus/nats: connection is nil")
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	o := &options{logger: log.DefaultLogger}
	for _, opt := range opts {
		opt(o)
	}

	return &Bus[K, V]{conn: conn, codec: c, logger: o.logger}, nil
}

// Publish sends the message on the subject named channel
func (b *Bus[K, V]) Publish(ctx context.Context, channel string, msg *message.Message[K, V]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := message.Encode(b.codec, msg)
	if err != nil {
		return err
	}

	if err := b.conn.Publish(channel, payload); err != nil {
		return gerrors.NewErrBusUnavailable("publish", err)
	}
	return nil
}

// Subscribe starts delivering the messages of the subject named channel to handler.
// It returns once the server has registered the subscription. When ctx carries no
// deadline the registration is bounded by the connection timeout.
func (b *Bus[K, V]) Subscribe(ctx context.Context, channel string, handler bus.Handler[K, V]) (bus.Subscription, error) {
	s := &subscription{channel: channel}
	handlerCtx := context.WithoutCancel(ctx)
	sub, err := b.conn.Subscribe(channel, func(msg *nats.Msg) {
		if !s.enter() {
			return
		}
		defer s.inflight.Done()

		decoded, err := message.Decode(b.codec, msg.Data)
		if err != nil {
			b.logger.Warnf("skipping undecodable message on subject=(%s): %v", msg.Subject, err)
			return
		}
		handler(handlerCtx, decoded)
	})
	if err != nil {
		return nil, gerrors.NewErrBusUnavailable("subscribe", err)
	}
	s.sub = sub

	if err := b.flush(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, gerrors.NewErrBusUnavailable("subscribe", err)
	}

	return s, nil
}

// flush waits for the server to process the pending protocol messages.
// FlushWithContext refuses a context without deadline.
func (b *Bus[K, V]) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		return b.conn.FlushWithContext(ctx)
	}

	timeout := b.conn.Opts.Timeout
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.conn.FlushWithContext(ctx)
}

type subscription struct {
	channel  string
	sub      *nats.Subscription
	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func (s *subscription) Channel() string {
	return s.channel
}

// enter registers a handler call unless the subscription is closed
func (s *subscription) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.inflight.Add(1)
	return true
}

// Unsubscribe stops the delivery and waits for the in-flight handler call, bounded by ctx.
func (s *subscription) Unsubscribe(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if err := s.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrBadSubscription) {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
