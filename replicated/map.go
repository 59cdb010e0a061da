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

package replicated

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/replicamap/bus"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/cache"
	"github.com/tochemey/replicamap/internal/metric"
	"github.com/tochemey/replicamap/internal/replication"
	"github.com/tochemey/replicamap/internal/resync"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/store"
)

// Map is a process-local, eventually consistent replica of a named map shared by
// every instance created with the same name, store and bus.
//
// Reads are served from the local cache and never touch the network. Writes update
// the local cache, notify the other instances and then write through to the backing
// store, in that order. Concurrent writes to the same key from different instances
// are not ordered: the instances may disagree until the next resync.
type Map[K comparable, V any] struct {
	name         string
	instanceID   string
	config       *Config
	logger       log.Logger
	cache        *cache.Cache[K, V]
	engine       *replication.Engine[K, V]
	synchronizer *resync.Synchronizer
	closed       *atomic.Bool
}

// New creates a replicated Map and joins the replication group of the given name.
//
// It subscribes to the map channel, then primes the local cache with a bulk read
// of the backing store, retrying up to the configured number of attempts. When a
// resync interval is configured, the periodic resync starts one interval later.
func New[K comparable, V any](ctx context.Context, name string, backingStore store.Store[K, V], notificationBus bus.Bus[K, V], opts ...Option) (*Map[K, V], error) {
	if err := validateMapName(name); err != nil {
		return nil, err
	}

	if backingStore == nil {
		return nil, gerrors.ErrNilStore
	}

	if notificationBus == nil {
		return nil, gerrors.ErrNilBus
	}

	config := NewConfig(opts...)
	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var equal cache.EqualFunc[V]
	if config.valueEqual != nil {
		fn, ok := config.valueEqual.(func(a, b V) bool)
		if !ok {
			return nil, fmt.Errorf("value equality %T does not match the map value type", config.valueEqual)
		}
		equal = fn
	}

	replicationMetric, err := metric.NewReplicationMetric(metric.NewProvider(metric.WithMeterProvider(config.meterProvider)).Meter(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to create the replication metrics: %w", err)
	}

	instanceID := uuid.NewString()
	logger := config.logger.With("map", name, "instance", instanceID)
	localCache := cache.New[K, V](equal)

	engine := replication.New[K, V](replication.Config{
		MapName:      name,
		InstanceID:   instanceID,
		Logger:       config.logger,
		Metric:       replicationMetric,
		WriteTimeout: config.writeTimeout,
		ReadTimeout:  config.readTimeout,
	}, localCache, backingStore, notificationBus)

	m := &Map[K, V]{
		name:       name,
		instanceID: instanceID,
		config:     config,
		logger:     logger,
		cache:      localCache,
		engine:     engine,
		closed:     atomic.NewBool(false),
	}

	// subscribe first so that no change published while priming is missed
	if err := engine.Subscribe(ctx); err != nil {
		return nil, err
	}

	var primeErr error
	retrier := retry.NewRetrier(config.initialLoadRetries, 100*time.Millisecond, time.Second)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		primeErr = engine.PullFullState(ctx, false)
		return primeErr
	}); err != nil {
		// report the store failure rather than the retrier's own error
		if primeErr != nil {
			err = primeErr
		}
		logger.Errorf("failed to prime map=(%s) from the backing store: %v", name, err)
		return nil, multierr.Append(err, engine.Unsubscribe(context.WithoutCancel(ctx)))
	}

	if config.resyncInterval > 0 {
		resetFirst := config.resyncMode == ResyncReplace
		m.synchronizer = resync.New(name, config.resyncInterval, func(ctx context.Context) error {
			return engine.Resync(ctx, resetFirst)
		}, resync.WithLogger(logger), resync.WithStopTimeout(config.shutdownTimeout))

		if err := m.synchronizer.Start(ctx); err != nil {
			return nil, multierr.Append(err, engine.Unsubscribe(context.WithoutCancel(ctx)))
		}
	}

	logger.Infof("map=(%s) started with %d entries", name, localCache.Len())
	return m, nil
}

// Name returns the logical map name
func (m *Map[K, V]) Name() string {
	return m.name
}

// InstanceID returns the identifier this instance tags its messages with
func (m *Map[K, V]) InstanceID() string {
	return m.instanceID
}

// Get returns the value stored locally under key
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.cache.Get(key)
}

// Len returns the number of local entries
func (m *Map[K, V]) Len() int {
	return m.cache.Len()
}

// IsEmpty reports whether the local cache holds no entry
func (m *Map[K, V]) IsEmpty() bool {
	return m.cache.Len() == 0
}

// ContainsKey reports whether key is present locally
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.cache.ContainsKey(key)
}

// ContainsValue reports whether any local entry holds value
func (m *Map[K, V]) ContainsValue(value V) bool {
	return m.cache.ContainsValue(value)
}

// Keys returns the local keys in no particular order
func (m *Map[K, V]) Keys() []K {
	return m.cache.Keys()
}

// Values returns the local values in no particular order
func (m *Map[K, V]) Values() []V {
	return m.cache.Values()
}

// Entries returns a copy of the local content
func (m *Map[K, V]) Entries() map[K]V {
	return m.cache.Snapshot()
}

// Range calls f for every local entry until f returns false. It iterates over a
// snapshot, so f may write to the map.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.cache.Range(f)
}

// Put sets key to value and returns the value previously held locally.
// A non-nil error means the backing store rejected the write: the local cache and
// the other instances have been updated anyway.
func (m *Map[K, V]) Put(ctx context.Context, key K, value V) (V, bool, error) {
	if m.closed.Load() {
		var zero V
		return zero, false, gerrors.ErrMapClosed
	}
	return m.engine.Put(ctx, key, value)
}

// Remove deletes key and returns the value previously held locally
func (m *Map[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	if m.closed.Load() {
		var zero V
		return zero, false, gerrors.ErrMapClosed
	}
	return m.engine.Remove(ctx, key)
}

// PutAll sets every given entry with a single notification and a single bulk
// write to the backing store
func (m *Map[K, V]) PutAll(ctx context.Context, entries map[K]V) error {
	if m.closed.Load() {
		return gerrors.ErrMapClosed
	}
	return m.engine.PutAll(ctx, entries)
}

// Clear removes every entry
func (m *Map[K, V]) Clear(ctx context.Context) error {
	if m.closed.Load() {
		return gerrors.ErrMapClosed
	}
	return m.engine.Clear(ctx)
}

// SyncRemoteMapWithLocal upserts the whole local content into the backing store.
// Entries present only in the store are left untouched.
func (m *Map[K, V]) SyncRemoteMapWithLocal(ctx context.Context) error {
	if m.closed.Load() {
		return gerrors.ErrMapClosed
	}
	return m.engine.PushFullState(ctx)
}

// SyncLocalMapWithRemote reads the whole backing store and merges it into the local
// cache. When resetFirst is set, the local content is replaced by the store content.
func (m *Map[K, V]) SyncLocalMapWithRemote(ctx context.Context, resetFirst bool) error {
	if m.closed.Load() {
		return gerrors.ErrMapClosed
	}
	return m.engine.PullFullState(ctx, resetFirst)
}

// Close stops the periodic resync and leaves the replication group. It waits up
// to the shutdown timeout for an in-progress resync and returns ErrShutdownTimeout
// when it had to give up. Writes fail with ErrMapClosed afterwards while reads keep
// serving the last local content. Calling Close more than once is a no-op.
func (m *Map[K, V]) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if m.synchronizer != nil {
		if stopErr := m.synchronizer.Stop(ctx); stopErr != nil {
			m.logger.Errorf("failed to stop the resync of map=(%s): %v", m.name, stopErr)
			err = multierr.Append(err, stopErr)
		}
	}

	err = multierr.Append(err, m.engine.Unsubscribe(ctx))
	m.logger.Infof("map=(%s) closed", m.name)
	return err
}

// String renders the local content
func (m *Map[K, V]) String() string {
	snapshot := m.cache.Snapshot()
	pairs := make([]string, 0, len(snapshot))
	for k, v := range snapshot {
		pairs = append(pairs, fmt.Sprintf("%v=%v", k, v))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("%s{%s}", m.name, strings.Join(pairs, ", "))
}
