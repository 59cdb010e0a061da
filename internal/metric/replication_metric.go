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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReplicationMetric groups the counters recorded by the replication engine of one map
type ReplicationMetric struct {
	attributes      metric.MeasurementOption
	published       metric.Int64Counter
	publishFailures metric.Int64Counter
	received        metric.Int64Counter
	echoes          metric.Int64Counter
	dropped         metric.Int64Counter
	storeFailures   metric.Int64Counter
	resyncRuns      metric.Int64Counter
	resyncFailures  metric.Int64Counter
}

// NewReplicationMetric creates the instruments for the named map
func NewReplicationMetric(meter metric.Meter, mapName string) (*ReplicationMetric, error) {
	x := &ReplicationMetric{
		attributes: metric.WithAttributes(attribute.String("map", mapName)),
	}

	instruments := []struct {
		counter     *metric.Int64Counter
		name        string
		description string
	}{
		{&x.published, "replicamap.messages.published", "Total number of change notifications published"},
		{&x.publishFailures, "replicamap.publish.failures", "Total number of change notifications that could not be published"},
		{&x.received, "replicamap.messages.received", "Total number of change notifications applied to the local cache"},
		{&x.echoes, "replicamap.messages.echoes", "Total number of self-published notifications discarded"},
		{&x.dropped, "replicamap.messages.dropped", "Total number of notifications discarded because of an unknown kind"},
		{&x.storeFailures, "replicamap.store.failures", "Total number of failed backing store calls"},
		{&x.resyncRuns, "replicamap.resync.runs", "Total number of full resynchronizations"},
		{&x.resyncFailures, "replicamap.resync.failures", "Total number of failed full resynchronizations"},
	}

	for _, instrument := range instruments {
		counter, err := meter.Int64Counter(instrument.name, metric.WithDescription(instrument.description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s instrument, %w", instrument.name, err)
		}
		*instrument.counter = counter
	}
	return x, nil
}

// Published records a published notification
func (x *ReplicationMetric) Published(ctx context.Context) {
	x.published.Add(ctx, 1, x.attributes)
}

// PublishFailed records a notification that could not be published
func (x *ReplicationMetric) PublishFailed(ctx context.Context) {
	x.publishFailures.Add(ctx, 1, x.attributes)
}

// Received records a notification applied to the local cache
func (x *ReplicationMetric) Received(ctx context.Context) {
	x.received.Add(ctx, 1, x.attributes)
}

// Echoed records a discarded self-published notification
func (x *ReplicationMetric) Echoed(ctx context.Context) {
	x.echoes.Add(ctx, 1, x.attributes)
}

// Dropped records a notification discarded because it could not be applied
func (x *ReplicationMetric) Dropped(ctx context.Context) {
	x.dropped.Add(ctx, 1, x.attributes)
}

// StoreFailed records a failed backing store call
func (x *ReplicationMetric) StoreFailed(ctx context.Context) {
	x.storeFailures.Add(ctx, 1, x.attributes)
}

// Resynced records a full resynchronization and whether it failed
func (x *ReplicationMetric) Resynced(ctx context.Context, err error) {
	x.resyncRuns.Add(ctx, 1, x.attributes)
	if err != nil {
		x.resyncFailures.Add(ctx, 1, x.attributes)
	}
}
