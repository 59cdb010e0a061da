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

// Package bus defines the publish/subscribe contract used to broadcast change
// notifications between the instances of a replicated map.
//
// Delivery is best effort: a message may be dropped and messages from different
// publishers may be observed in different orders. Implementations live in the
// sub-packages: memory, redis, olric and nats.
package bus

import (
	"context"

	"github.com/tochemey/replicamap/message"
)

const channelSuffix = "_topic"

// Handler is invoked for every message delivered on a subscribed channel, including the
// messages the subscriber published itself. Handlers of one subscription are called
// sequentially but never on the publisher's goroutine. The message must be treated
// as read-only.
type Handler[K comparable, V any] func(ctx context.Context, msg *message.Message[K, V])

// Subscription is a live registration of a Handler on a channel
type Subscription interface {
	// Channel returns the subscribed channel name
	Channel() string
	// Unsubscribe cancels the subscription and waits for the in-flight handler call to return
	Unsubscribe(ctx context.Context) error
}

// Bus publishes and subscribes to change notifications
type Bus[K comparable, V any] interface {
	// Publish broadcasts the message on the channel
	Publish(ctx context.Context, channel string, msg *message.Message[K, V]) error
	// Subscribe registers the handler on the channel
	Subscribe(ctx context.Context, channel string, handler Handler[K, V]) (Subscription, error)
}

// ChannelName returns the channel on which the instances of the named map talk
func ChannelName(mapName string) string {
	return mapName + channelSuffix
}
