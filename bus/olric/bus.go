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

// Package olric provides a Bus on top of the olric publish-subscribe service.
package olric

import (
	"context"
	"errors"

	"github.com/tochemey/olric"

	"github.com/tochemey/replicamap/bus"
	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/pubsub"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/message"
)

var errNilClient = errors.New("olric client is not defined")

// Bus publishes change notifications through olric. Delivery is fire and forget
// like redis pub/sub.
type Bus[K comparable, V any] struct {
	pubSub *olric.PubSub
	codec  codec.Codec[K, V]
	logger log.Logger
}

// enforce compilation error
var _ bus.Bus[string, any] = (*Bus[string, any])(nil)

// Option configures the Bus
type Option func(*options)

type options struct {
	logger        log.Logger
	pubSubOptions []olric.PubSubOption
}

// WithLogger sets the logger used to report undecodable payloads
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAddress pins the olric member the bus talks to
func WithAddress(addr string) Option {
	return func(o *options) {
		o.pubSubOptions = append(o.pubSubOptions, olric.ToAddress(addr))
	}
}

// New creates a Bus using the given client. The client is owned by the caller.
func New[K comparable, V any](client olric.Client, c codec.Codec[K, V], opts ...Option) (*Bus[K, V], error) {
	if client == nil {
		return nil, errNilClient
	}

	if c == nil {
		return nil, gerrors.ErrNilCodec
	}

	o := &options{logger: log.DefaultLogger}
	for _, opt := range opts {
		opt(o)
	}

	ps, err := client.NewPubSub(o.pubSubOptions...)
	if err != nil {
		return nil, gerrors.NewErrBusUnavailable("new", err)
	}

	return &Bus[K, V]{pubSub: ps, codec: c, logger: o.logger}, nil
}

// Publish sends the message to every current subscriber of channel
func (b *Bus[K, V]) Publish(ctx context.Context, channel string, msg *message.Message[K, V]) error {
	payload, err := message.Encode(b.codec, msg)
	if err != nil {
		return err
	}

	if _, err := b.pubSub.Publish(ctx, channel, payload); err != nil {
		return gerrors.NewErrBusUnavailable("publish", err)
	}
	return nil
}

// Subscribe starts delivering the messages of channel to handler
func (b *Bus[K, V]) Subscribe(ctx context.Context, channel string, handler bus.Handler[K, V]) (bus.Subscription, error) {
	subscription, err := pubsub.Start(ctx, channel, b.pubSub.Subscribe(ctx, channel), b.codec, handler, b.logger)
	if err != nil {
		return nil, gerrors.NewErrBusUnavailable("subscribe", err)
	}
	return subscription, nil
}
