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

// Package testutil starts the backends the adapter tests run against.
package testutil

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tochemey/olric"
	"github.com/tochemey/olric/config"
	"github.com/travisjeffery/go-dynaport"
)

// StartNATS starts an embedded NATS server with JetStream enabled. The server is
// shut down when the test completes.
func StartNATS(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	t.Cleanup(func() {
		serv.Shutdown()
		serv.WaitForShutdown()
	})
	return serv
}

// StartOlric starts a single embedded olric node bound on free local ports and
// returns it along with its address. The node is shut down when the test completes.
func StartOlric(t *testing.T) (*olric.Olric, string) {
	t.Helper()
	ports := dynaport.Get(2)

	conf := config.New("local")
	conf.BindAddr = "127.0.0.1"
	conf.BindPort = ports[0]
	conf.MemberlistConfig.BindAddr = "127.0.0.1"
	conf.MemberlistConfig.BindPort = ports[1]
	conf.MemberlistConfig.AdvertiseAddr = "127.0.0.1"
	conf.MemberlistConfig.AdvertisePort = ports[1]
	conf.LogLevel = "ERROR"
	conf.LogOutput = io.Discard

	startCtx, cancel := context.WithCancel(context.Background())
	conf.Started = func() { cancel() }

	db, err := olric.New(conf)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.Start()
	}()

	select {
	case <-startCtx.Done():
	case err := <-errCh:
		t.Fatalf("olric node failed to start: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatalf("olric node did not start in time")
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Shutdown(ctx)
	})
	return db, net.JoinHostPort(conf.BindAddr, strconv.Itoa(conf.BindPort))
}

// StartRedis runs a redis container and returns its address. The test is skipped
// in short mode. The container is terminated when the test completes.
func StartRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}
