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

// Package pubsub consumes redis-protocol subscriptions on behalf of the redis and
// olric buses, which both hand out a go-redis PubSub.
package pubsub

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tochemey/replicamap/bus"
	"github.com/tochemey/replicamap/codec"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/message"
)

// Subscription delivers the messages of a go-redis PubSub to a bus.Handler.
// Payloads that cannot be decoded are logged and skipped.
type Subscription[K comparable, V any] struct {
	channel string
	pubSub  *redis.PubSub
	codec   codec.Codec[K, V]
	handler bus.Handler[K, V]
	logger  log.Logger

	once sync.Once
	done chan struct{}
}

// enforce compilation error
var _ bus.Subscription = (*Subscription[string, any])(nil)

// Start waits for the server to confirm the subscription, then consumes it in the
// background. The PubSub is closed when the confirmation fails.
func Start[K comparable, V any](ctx context.Context, channel string, pubSub *redis.PubSub, c codec.Codec[K, V], handler bus.Handler[K, V], logger log.Logger) (*Subscription[K, V], error) {
	if _, err := pubSub.Receive(ctx); err != nil {
		_ = pubSub.Close()
		return nil, err
	}

	subscription := &Subscription[K, V]{
		channel: channel,
		pubSub:  pubSub,
		codec:   c,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}

	go subscription.consume(context.WithoutCancel(ctx), pubSub.Channel())
	return subscription, nil
}

// Channel returns the subscribed channel
func (s *Subscription[K, V]) Channel() string {
	return s.channel
}

// Unsubscribe closes the PubSub and waits for the consumer to drain
func (s *Subscription[K, V]) Unsubscribe(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.pubSub.Close()
	})

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// consume runs until the PubSub is closed
func (s *Subscription[K, V]) consume(ctx context.Context, messages <-chan *redis.Message) {
	defer close(s.done)
	for msg := range messages {
		decoded, err := message.Decode(s.codec, []byte(msg.Payload))
		if err != nil {
			s.logger.Warnf("skipping undecodable message on channel=(%s): %v", s.channel, err)
			continue
		}
		s.handler(ctx, decoded)
	}
}
