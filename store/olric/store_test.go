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

package olric

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/olric"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/testutil"
)

type failingGetDMap struct {
	olric.DMap
	err error
}

func (x failingGetDMap) Get(context.Context, string) (*olric.GetResponse, error) {
	return nil, x.err
}

func TestNew(t *testing.T) {
	_, err := New[string, int](nil, "orders", codec.JSON[string, int]())
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	db, _ := testutil.StartOlric(t)
	client := db.NewEmbeddedClient()
	ctx := context.Background()

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := New[string, int](client, "", codec.JSON[string, int]())
		assert.Error(t, err)
		_, err = New[string, int](client, "orders", nil)
		assert.ErrorIs(t, err, gerrors.ErrNilCodec)
	})
	t.Run("single entry operations", func(t *testing.T) {
		s, err := New[string, int](client, "single", codec.JSON[string, int]())
		require.NoError(t, err)

		_, ok, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Put(ctx, "k1", 1))
		value, ok, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, value)

		require.NoError(t, s.Remove(ctx, "k1"))
		_, ok, err = s.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("bulk operations", func(t *testing.T) {
		s, err := New[string, int](client, "bulk", codec.JSON[string, int](), WithConcurrency(4))
		require.NoError(t, err)

		entries := make(map[string]int, 50)
		for i := range 50 {
			entries[fmt.Sprintf("k%d", i)] = i
		}
		require.NoError(t, s.PutAll(ctx, entries))
		require.NoError(t, s.PutAll(ctx, nil))

		all, err := s.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, entries, all)

		require.NoError(t, s.Clear(ctx))
		all, err = s.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		require.NoError(t, s.Clear(ctx))
	})
	t.Run("read failures are returned", func(t *testing.T) {
		s, err := New[string, int](client, "failing", codec.JSON[string, int]())
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, "k1", 1))

		boom := errors.New("boom")
		s.dmap = failingGetDMap{DMap: s.dmap, err: boom}
		_, _, err = s.Get(ctx, "k1")
		assert.ErrorIs(t, err, boom)
		_, err = s.ReadAll(ctx)
		assert.ErrorIs(t, err, boom)

		s.dmap = failingGetDMap{DMap: s.dmap.(failingGetDMap).DMap, err: olric.ErrKeyNotFound}
		all, err := s.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
