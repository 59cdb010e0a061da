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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/replicamap/bus"
	busmemory "github.com/tochemey/replicamap/bus/memory"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/log"
	"github.com/tochemey/replicamap/message"
	"github.com/tochemey/replicamap/store"
	storememory "github.com/tochemey/replicamap/store/memory"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// flakyStore wraps the memory store and fails on demand
type flakyStore struct {
	*storememory.Store[string, int]
	failWrites *atomic.Bool
	failReads  *atomic.Bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		Store:      storememory.New[string, int](),
		failWrites: atomic.NewBool(false),
		failReads:  atomic.NewBool(false),
	}
}

var errStoreDown = errors.New("store is down")

func (s *flakyStore) Put(ctx context.Context, key string, value int) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.Store.Put(ctx, key, value)
}

func (s *flakyStore) PutAll(ctx context.Context, entries map[string]int) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.Store.PutAll(ctx, entries)
}

func (s *flakyStore) Remove(ctx context.Context, key string) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.Store.Remove(ctx, key)
}

func (s *flakyStore) Clear(ctx context.Context) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.Store.Clear(ctx)
}

func (s *flakyStore) ReadAll(ctx context.Context) (map[string]int, error) {
	if s.failReads.Load() {
		return nil, errStoreDown
	}
	return s.Store.ReadAll(ctx)
}

// lossyBus wraps the memory bus and loses or rejects publishes on demand
type lossyBus struct {
	*busmemory.Bus[string, int]
	drop *atomic.Bool
	fail *atomic.Bool
}

func newLossyBus() *lossyBus {
	return &lossyBus{
		Bus:  busmemory.New[string, int](),
		drop: atomic.NewBool(false),
		fail: atomic.NewBool(false),
	}
}

func (b *lossyBus) Publish(ctx context.Context, channel string, msg *message.Message[string, int]) error {
	if b.fail.Load() {
		return errors.New("broker unreachable")
	}
	if b.drop.Load() {
		return nil
	}
	return b.Bus.Publish(ctx, channel, msg)
}

func newMap(t *testing.T, st store.Store[string, int], b bus.Bus[string, int], opts ...Option) *Map[string, int] {
	t.Helper()
	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	m, err := New[string, int](context.Background(), "orders", st, b, opts...)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func TestMapReplication(t *testing.T) {
	t.Run("changes made on one instance reach the other", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		other := newMap(t, st, b)
		assert.NotEqual(t, a.InstanceID(), other.InstanceID())
		assert.Equal(t, "orders", a.Name())

		require.NoError(t, a.Clear(ctx))
		_, _, err := a.Put(ctx, "k1", 1)
		require.NoError(t, err)
		_, _, err = a.Put(ctx, "k2", 2)
		require.NoError(t, err)

		require.Eventually(t, func() bool { return other.Len() == 2 }, waitFor, tick)
		assert.Equal(t, map[string]int{"k1": 1, "k2": 2}, other.Entries())

		_, _, err = a.Put(ctx, "k1", 2)
		require.NoError(t, err)
		require.NoError(t, a.Close(ctx))

		require.Eventually(t, func() bool {
			value, ok := other.Get("k1")
			return ok && value == 2
		}, waitFor, tick)

		require.NoError(t, other.Close(ctx))
	})
	t.Run("a new instance is primed from the store", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		require.NoError(t, a.PutAll(ctx, map[string]int{"k1": 1, "k2": 2, "k3": 3}))

		late := newMap(t, st, b)
		assert.Equal(t, 3, late.Len())
		assert.True(t, late.ContainsKey("k3"))
		assert.True(t, late.ContainsValue(2))
		assert.False(t, late.ContainsValue(4))
		assert.ElementsMatch(t, []string{"k1", "k2", "k3"}, late.Keys())
		assert.ElementsMatch(t, []int{1, 2, 3}, late.Values())

		require.NoError(t, a.Close(ctx))
		require.NoError(t, late.Close(ctx))
	})
	t.Run("own notifications are not applied twice", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		_, _, err := a.Put(ctx, "k1", 1)
		require.NoError(t, err)
		previous, ok, err := a.Remove(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, previous)

		// an echoed PUT would bring k1 back
		time.Sleep(100 * time.Millisecond)
		assert.False(t, a.ContainsKey("k1"))
		assert.True(t, a.IsEmpty())

		require.NoError(t, a.Close(ctx))
	})
	t.Run("clear empties every instance", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		other := newMap(t, st, b)
		require.NoError(t, other.PutAll(ctx, map[string]int{"k1": 1, "k2": 2}))
		require.Eventually(t, func() bool { return a.Len() == 2 }, waitFor, tick)

		require.NoError(t, a.Clear(ctx))
		require.Eventually(t, func() bool { return other.IsEmpty() }, waitFor, tick)
		assert.Zero(t, st.Len())

		require.NoError(t, a.Close(ctx))
		require.NoError(t, other.Close(ctx))
	})
	t.Run("bulk put is equivalent to individual puts", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		b := busmemory.New[string, int]()
		defer b.Close()

		bulkStore := storememory.New[string, int]()
		bulk := newMap(t, bulkStore, b)
		require.NoError(t, bulk.PutAll(ctx, map[string]int{"k1": 1, "k2": 2}))

		singleStore := storememory.New[string, int]()
		single, err := New[string, int](ctx, "payments", singleStore, b, WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		_, _, err = single.Put(ctx, "k1", 1)
		require.NoError(t, err)
		_, _, err = single.Put(ctx, "k2", 2)
		require.NoError(t, err)

		assert.Equal(t, single.Entries(), bulk.Entries())
		bulkContent, err := bulkStore.ReadAll(ctx)
		require.NoError(t, err)
		singleContent, err := singleStore.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, singleContent, bulkContent)

		require.NoError(t, bulk.Close(ctx))
		require.NoError(t, single.Close(ctx))
	})
	t.Run("unknown notifications are ignored", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		channel := bus.ChannelName(a.Name())
		require.NoError(t, b.Publish(ctx, channel, &message.Message[string, int]{Kind: message.Kind(42), Origin: "stranger"}))
		require.NoError(t, b.Publish(ctx, channel, message.NewPut("stranger", "k1", 1)))

		require.Eventually(t, func() bool { return a.ContainsKey("k1") }, waitFor, tick)
		assert.Equal(t, 1, a.Len())

		require.NoError(t, a.Close(ctx))
	})
}

func TestMapFailures(t *testing.T) {
	t.Run("store failures are returned and the local write is kept", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := newFlakyStore()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		other := newMap(t, st, b)

		st.failWrites.Store(true)
		_, _, err := a.Put(ctx, "k1", 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.ErrorIs(t, err, errStoreDown)

		value, ok := a.Get("k1")
		require.True(t, ok)
		assert.Equal(t, 1, value)
		require.Eventually(t, func() bool { return other.ContainsKey("k1") }, waitFor, tick)

		assert.ErrorIs(t, a.PutAll(ctx, map[string]int{"k2": 2}), gerrors.ErrStoreUnavailable)
		assert.ErrorIs(t, a.SyncRemoteMapWithLocal(ctx), gerrors.ErrStoreUnavailable)

		st.failWrites.Store(false)
		require.NoError(t, a.SyncRemoteMapWithLocal(ctx))
		assert.Equal(t, 2, st.Len())

		require.NoError(t, a.Close(ctx))
		require.NoError(t, other.Close(ctx))
	})
	t.Run("publish failures do not fail the write", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := newLossyBus()
		defer b.Close()

		a := newMap(t, st, b)
		b.fail.Store(true)
		_, _, err := a.Put(ctx, "k1", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, st.Len())
		assert.True(t, a.ContainsKey("k1"))

		require.NoError(t, a.Close(ctx))
	})
	t.Run("creation fails when the store cannot be read", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := newFlakyStore()
		st.failReads.Store(true)
		b := busmemory.New[string, int]()
		defer b.Close()

		m, err := New[string, int](ctx, "orders", st, b, WithLogger(log.DiscardLogger), WithInitialLoadRetries(2))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.Nil(t, m)
		assert.Zero(t, b.Subscribers(bus.ChannelName("orders")))
	})
	t.Run("invalid arguments", func(t *testing.T) {
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		_, err := New[string, int](ctx, "", st, b)
		assert.Error(t, err)
		_, err = New[string, int](ctx, "orders/eu", st, b)
		assert.ErrorIs(t, err, gerrors.ErrInvalidMapName)
		_, err = New[string, int](ctx, "_orders", st, b)
		assert.ErrorIs(t, err, gerrors.ErrInvalidMapName)
		_, err = New[string, int](ctx, "orders", nil, b)
		assert.ErrorIs(t, err, gerrors.ErrNilStore)
		_, err = New[string, int](ctx, "orders", st, nil)
		assert.ErrorIs(t, err, gerrors.ErrNilBus)
		_, err = New[string, int](ctx, "orders", st, b, WithValueEqual(func(a, b string) bool { return a == b }))
		assert.Error(t, err)
		_, err = New[string, int](ctx, "orders", st, b, WithResyncMode(ResyncMode(9)))
		assert.Error(t, err)
		assert.Zero(t, b.Subscribers(bus.ChannelName("orders")))
	})
}

func TestMapSync(t *testing.T) {
	t.Run("periodic resync repairs a lost notification", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := newLossyBus()
		defer b.Close()

		a := newMap(t, st, b)
		other := newMap(t, st, b, WithResyncInterval(50*time.Millisecond))

		b.drop.Store(true)
		_, _, err := a.Put(ctx, "k1", 1)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			value, ok := other.Get("k1")
			return ok && value == 1
		}, waitFor, tick)

		require.NoError(t, a.Close(ctx))
		require.NoError(t, other.Close(ctx))
	})
	t.Run("replace resync drops keys deleted remotely", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := newLossyBus()
		defer b.Close()

		a := newMap(t, st, b)
		other := newMap(t, st, b, WithResyncInterval(50*time.Millisecond), WithResyncMode(ResyncReplace))

		_, _, err := a.Put(ctx, "k1", 1)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return other.ContainsKey("k1") }, waitFor, tick)

		b.drop.Store(true)
		_, _, err = a.Remove(ctx, "k1")
		require.NoError(t, err)
		require.Eventually(t, func() bool { return !other.ContainsKey("k1") }, waitFor, tick)

		require.NoError(t, a.Close(ctx))
		require.NoError(t, other.Close(ctx))
	})
	t.Run("explicit sync in both directions", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		st := storememory.New[string, int]()
		b := busmemory.New[string, int]()
		defer b.Close()

		a := newMap(t, st, b)
		require.NoError(t, st.PutAll(ctx, map[string]int{"remote": 1}))
		a.cache.Put("local", 2)

		require.NoError(t, a.SyncLocalMapWithRemote(ctx, false))
		assert.Equal(t, map[string]int{"remote": 1, "local": 2}, a.Entries())

		require.NoError(t, a.SyncRemoteMapWithLocal(ctx))
		assert.Equal(t, 2, st.Len())

		require.NoError(t, st.Remove(ctx, "local"))
		require.NoError(t, a.SyncLocalMapWithRemote(ctx, true))
		assert.Equal(t, map[string]int{"remote": 1}, a.Entries())

		require.NoError(t, a.Close(ctx))
	})
}

func TestMapClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	st := storememory.New[string, int]()
	b := busmemory.New[string, int]()
	defer b.Close()

	m := newMap(t, st, b, WithResyncInterval(time.Hour))
	_, _, err := m.Put(ctx, "k1", 1)
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	require.NoError(t, m.Close(ctx))
	assert.Zero(t, b.Subscribers(bus.ChannelName("orders")))

	_, _, err = m.Put(ctx, "k2", 2)
	assert.ErrorIs(t, err, gerrors.ErrMapClosed)
	_, _, err = m.Remove(ctx, "k1")
	assert.ErrorIs(t, err, gerrors.ErrMapClosed)
	assert.ErrorIs(t, m.PutAll(ctx, map[string]int{"k3": 3}), gerrors.ErrMapClosed)
	assert.ErrorIs(t, m.Clear(ctx), gerrors.ErrMapClosed)
	assert.ErrorIs(t, m.SyncRemoteMapWithLocal(ctx), gerrors.ErrMapClosed)
	assert.ErrorIs(t, m.SyncLocalMapWithRemote(ctx, false), gerrors.ErrMapClosed)

	value, ok := m.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestMapString(t *testing.T) {
	ctx := context.Background()
	st := storememory.New[string, int]()
	b := busmemory.New[string, int]()
	defer b.Close()

	m := newMap(t, st, b)
	require.NoError(t, m.PutAll(ctx, map[string]int{"b": 2, "a": 1}))
	assert.Equal(t, "orders{a=1, b=2}", m.String())

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
	require.NoError(t, m.Close(ctx))
}

func TestMapValueEqual(t *testing.T) {
	ctx := context.Background()
	st := storememory.New[string, int]()
	b := busmemory.New[string, int]()
	defer b.Close()

	// values are equal when they have the same parity
	m := newMap(t, st, b, WithValueEqual(func(a, b int) bool { return a%2 == b%2 }))
	_, _, err := m.Put(ctx, "k1", 3)
	require.NoError(t, err)
	assert.True(t, m.ContainsValue(5))
	assert.False(t, m.ContainsValue(4))
	require.NoError(t, m.Close(ctx))
}
