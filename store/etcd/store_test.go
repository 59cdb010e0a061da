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

package etcd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testcontainer "github.com/testcontainers/testcontainers-go/modules/etcd"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
)

var etcdEndpoints []string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := testcontainer.Run(ctx, "gcr.io/etcd-development/etcd:v3.5.14")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	endpoints, err := container.ClientEndpoints(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_ = testcontainers.TerminateContainer(container)
		os.Exit(1)
	}

	etcdEndpoints = endpoints
	code := m.Run()
	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func newClient(t *testing.T) *clientv3.Client {
	t.Helper()
	if len(etcdEndpoints) == 0 {
		t.Skip("skipping etcd container in short mode")
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   etcdEndpoints,
		DialTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConfig(t *testing.T) {
	config := &Config{Namespace: " orders "}
	config.Sanitize()
	require.NoError(t, config.Validate())
	assert.Equal(t, "orders/", config.Namespace)
	assert.Equal(t, 128, config.TxnBatchSize)

	config = &Config{Namespace: "orders/"}
	config.Sanitize()
	assert.Equal(t, "orders/", config.Namespace)

	assert.Error(t, (&Config{Namespace: "/", TxnBatchSize: 1}).Validate())
	assert.Error(t, (&Config{Namespace: "orders/", TxnBatchSize: -1}).Validate())
}

func TestNew(t *testing.T) {
	_, err := New[string, int](nil, &Config{Namespace: "orders"}, codec.JSON[string, int]())
	assert.Error(t, err)

	client := newClient(t)
	_, err = New[string, int](client, nil, codec.JSON[string, int]())
	assert.Error(t, err)
	_, err = New[string, int](client, &Config{Namespace: "orders"}, nil)
	assert.ErrorIs(t, err, gerrors.ErrNilCodec)
	_, err = New[string, int](client, &Config{}, codec.JSON[string, int]())
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	s, err := New[string, int](client, &Config{Namespace: "orders", TxnBatchSize: 8}, codec.JSON[string, int]())
	require.NoError(t, err)
	neighbour, err := New[string, int](client, &Config{Namespace: "orders-archive"}, codec.JSON[string, int]())
	require.NoError(t, err)
	require.NoError(t, neighbour.Put(ctx, "old", 1))

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k1", 1))
	value, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, value)

	entries := make(map[string]int, 20)
	for i := range 20 {
		entries[fmt.Sprintf("k%d", i)] = i
	}
	require.NoError(t, s.PutAll(ctx, entries))
	require.NoError(t, s.PutAll(ctx, nil))

	all, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, all)

	require.NoError(t, s.Remove(ctx, "k0"))
	all, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 19)

	raw, err := client.Get(ctx, "orders/k1")
	require.NoError(t, err)
	require.Len(t, raw.Kvs, 1)
	assert.Equal(t, "1", string(raw.Kvs[0].Value))

	require.NoError(t, s.Clear(ctx))
	all, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// the neighbour namespace shares a prefix but is left untouched
	value, ok, err = neighbour.Get(ctx, "old")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, value)
}
