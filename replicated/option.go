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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/replicamap/log"
)

// Option configures a replicated Map
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.logger = logger
	})
}

// WithResyncInterval enables the periodic resync of the local cache from the
// backing store. A zero or negative interval disables it, which is the default.
func WithResyncInterval(interval time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.resyncInterval = interval
	})
}

// WithResyncMode sets how a periodic resync applies the store content.
// The default is ResyncMerge.
func WithResyncMode(mode ResyncMode) Option {
	return OptionFunc(func(config *Config) {
		config.resyncMode = mode
	})
}

// WithShutdownTimeout sets how long Close waits for an in-progress resync
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.shutdownTimeout = timeout
	})
}

// WithWriteTimeout bounds every store write and every publish
func WithWriteTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.writeTimeout = timeout
	})
}

// WithReadTimeout bounds every bulk read of the store
func WithReadTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.readTimeout = timeout
	})
}

// WithInitialLoadRetries sets how many attempts are made to prime the cache from
// the store when the map is created
func WithInitialLoadRetries(retries int) Option {
	return OptionFunc(func(config *Config) {
		config.initialLoadRetries = retries
	})
}

// WithValueEqual sets the equality used by ContainsValue. V must match the value
// type of the Map it is given to.
func WithValueEqual[V any](equal func(a, b V) bool) Option {
	return OptionFunc(func(config *Config) {
		config.valueEqual = equal
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider used for the
// replication metrics. The global provider is used by default.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(config *Config) {
		config.meterProvider = provider
	})
}
