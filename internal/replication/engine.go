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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/tochemey/replicamap/bus"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/cache"
	"github.com/tochemey/replicamap/internal/metric"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/message"
	"github.com/tochemey/replicamap/store"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 5 * time.Second
)

// Config holds the settings of an Engine
type Config struct {
	// MapName is the logical map name
	MapName string
	// InstanceID identifies this instance in the messages it publishes
	InstanceID string
	// Logger is used for every log entry of the engine
	Logger log.Logger
	// Metric records the replication counters. A no-op one is used when nil.
	Metric *metric.ReplicationMetric
	// WriteTimeout bounds every store write and every publish
	WriteTimeout time.Duration
	// ReadTimeout bounds every store read
	ReadTimeout time.Duration
}

// Engine implements the replication protocol of one map instance.
//
// A local write updates the cache first, then publishes a message tagged with the
// instance id, then writes through to the backing store. A message received from
// another instance only touches the cache. Neither the publish nor the store call
// happens while the cache lock is held.
type Engine[K comparable, V any] struct {
	mapName      string
	channel      string
	instanceID   string
	cache        *cache.Cache[K, V]
	store        store.Store[K, V]
	bus          bus.Bus[K, V]
	logger       log.Logger
	metric       *metric.ReplicationMetric
	writeTimeout time.Duration
	readTimeout  time.Duration

	mu           sync.Mutex
	subscription bus.Subscription
}

// New creates an Engine
func New[K comparable, V any](config Config, localCache *cache.Cache[K, V], backingStore store.Store[K, V], notificationBus bus.Bus[K, V]) *Engine[K, V] {
	logger := config.Logger
	if logger == nil {
		logger = log.DiscardLogger
	}

	replicationMetric := config.Metric
	if replicationMetric == nil {
		// the no-op meter never fails
		replicationMetric, _ = metric.NewReplicationMetric(noop.NewMeterProvider().Meter(""), config.MapName)
	}

	writeTimeout := config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	readTimeout := config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	return &Engine[K, V]{
		mapName:      config.MapName,
		channel:      bus.ChannelName(config.MapName),
		instanceID:   config.InstanceID,
		cache:        localCache,
		store:        backingStore,
		bus:          notificationBus,
		logger:       logger.With("map", config.MapName, "instance", config.InstanceID),
		metric:       replicationMetric,
		writeTimeout: writeTimeout,
		readTimeout:  readTimeout,
	}
}

// Channel returns the channel the engine publishes on and listens to
func (x *Engine[K, V]) Channel() string {
	return x.channel
}

// Subscribe starts listening to the map channel
func (x *Engine[K, V]) Subscribe(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.subscription != nil {
		return nil
	}

	subscription, err := x.bus.Subscribe(ctx, x.channel, x.Receive)
	if err != nil {
		x.logger.Errorf("failed to subscribe to channel=(%s): %v", x.channel, err)
		if errors.Is(err, gerrors.ErrBusUnavailable) {
			return err
		}
		return gerrors.NewErrBusUnavailable("subscribe", err)
	}

	x.subscription = subscription
	x.logger.Debugf("subscribed to channel=(%s)", x.channel)
	return nil
}

// Unsubscribe stops listening to the map channel
func (x *Engine[K, V]) Unsubscribe(ctx context.Context) error {
	x.mu.Lock()
	subscription := x.subscription
	x.subscription = nil
	x.mu.Unlock()

	if subscription == nil {
		return nil
	}

	if err := subscription.Unsubscribe(ctx); err != nil {
		x.logger.Errorf("failed to unsubscribe from channel=(%s): %v", x.channel, err)
		return gerrors.NewErrBusUnavailable("unsubscribe", err)
	}
	return nil
}

// Put sets key to value locally, broadcasts the change and writes it through to the store.
// It returns the previous local value. A store failure is returned but the local
// update is kept.
func (x *Engine[K, V]) Put(ctx context.Context, key K, value V) (V, bool, error) {
	previous, ok := x.cache.Put(key, value)
	x.publish(ctx, message.NewPut(x.instanceID, key, value))
	err := x.write(ctx, "put", func(ctx context.Context) error {
		return x.store.Put(ctx, key, value)
	})
	return previous, ok, err
}

// Remove deletes key locally, broadcasts the change and deletes it from the store
func (x *Engine[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	previous, ok := x.cache.Remove(key)
	x.publish(ctx, message.NewRemove[K, V](x.instanceID, key))
	err := x.write(ctx, "remove", func(ctx context.Context) error {
		return x.store.Remove(ctx, key)
	})
	return previous, ok, err
}

// PutAll sets every entry locally, broadcasts them in a single message and
// writes them through to the store in bulk
func (x *Engine[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if len(entries) == 0 {
		return nil
	}

	msg := message.NewPutAll(x.instanceID, entries)
	x.cache.PutAll(msg.Entries)
	x.publish(ctx, msg)
	return x.write(ctx, "putAll", func(ctx context.Context) error {
		return x.store.PutAll(ctx, msg.Entries)
	})
}

// Clear empties the local cache, broadcasts the change and clears the store
func (x *Engine[K, V]) Clear(ctx context.Context) error {
	x.cache.Clear()
	x.publish(ctx, message.NewClear[K, V](x.instanceID))
	return x.write(ctx, "clear", x.store.Clear)
}

// PushFullState upserts the whole local content into the store.
// Keys present in the store but absent locally are left untouched.
func (x *Engine[K, V]) PushFullState(ctx context.Context) error {
	snapshot := x.cache.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	x.logger.Debugf("pushing %d entries to the backing store", len(snapshot))
	return x.write(ctx, "pushFullState", func(ctx context.Context) error {
		return x.store.PutAll(ctx, snapshot)
	})
}

// PullFullState reads the whole store content in one bulk call and merges it into the
// local cache. When resetFirst is set the local content is replaced instead.
func (x *Engine[K, V]) PullFullState(ctx context.Context, resetFirst bool) error {
	ctx, cancel := context.WithTimeout(ctx, x.readTimeout)
	defer cancel()

	entries, err := x.store.ReadAll(ctx)
	if err != nil {
		x.metric.StoreFailed(ctx)
		x.logger.Errorf("failed to read the backing store: %v", err)
		return gerrors.NewErrStoreUnavailable("readAll", err)
	}

	if resetFirst {
		x.cache.Replace(entries)
	} else {
		x.cache.PutAll(entries)
	}

	x.logger.Debugf("pulled %d entries from the backing store (reset=%t)", len(entries), resetFirst)
	return nil
}

// Resync runs a full pull on behalf of the synchronizer and records its outcome
func (x *Engine[K, V]) Resync(ctx context.Context, resetFirst bool) error {
	err := x.PullFullState(ctx, resetFirst)
	x.metric.Resynced(ctx, err)
	return err
}

// Receive applies a message delivered by the bus.
// Messages published by this instance are discarded. Any other message is applied
// to the local cache only: it is never republished nor written to the store.
func (x *Engine[K, V]) Receive(ctx context.Context, msg *message.Message[K, V]) {
	if msg == nil {
		return
	}

	if msg.IsFrom(x.instanceID) {
		x.metric.Echoed(ctx)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			x.metric.Dropped(ctx)
			x.logger.Errorf("recovered while applying %s message from=(%s): %v", msg.Kind, msg.Origin, r)
		}
	}()

	if err := msg.Accept(applier[K, V]{x.cache}); err != nil {
		x.metric.Dropped(ctx)
		x.logger.Warnf("dropping message from=(%s): %v", msg.Origin, err)
		return
	}

	x.metric.Received(ctx)
	x.logger.Debugf("applied %s message from=(%s)", msg.Kind, msg.Origin)
}

// publish broadcasts the message. A failure only degrades the freshness of the
// other instances until their next resync, so it is logged and swallowed.
func (x *Engine[K, V]) publish(ctx context.Context, msg *message.Message[K, V]) {
	ctx, cancel := context.WithTimeout(ctx, x.writeTimeout)
	defer cancel()

	if err := x.bus.Publish(ctx, x.channel, msg); err != nil {
		x.metric.PublishFailed(ctx)
		x.logger.Warnf("failed to publish %s message on channel=(%s): %v", msg.Kind, x.channel, err)
		return
	}
	x.metric.Published(ctx)
}

func (x *Engine[K, V]) write(ctx context.Context, op string, call func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, x.writeTimeout)
	defer cancel()

	if err := call(ctx); err != nil {
		x.metric.StoreFailed(ctx)
		x.logger.Errorf("backing store %s failed: %v", op, err)
		return gerrors.NewErrStoreUnavailable(op, err)
	}
	return nil
}

// String describes the engine
func (x *Engine[K, V]) String() string {
	return fmt.Sprintf("replication.Engine(map=%s, instance=%s)", x.mapName, x.instanceID)
}
