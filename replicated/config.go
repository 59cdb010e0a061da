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
	"fmt"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/metric"

	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/internal/validation"
	"github.com/tochemey/replicamap/log"
)

// ResyncMode defines how a periodic resync applies the store content to the local cache
type ResyncMode uint8

const (
	// ResyncMerge upserts the store entries into the cache. Keys that exist only
	// locally are kept.
	ResyncMerge ResyncMode = iota
	// ResyncReplace swaps the cache content for the store content in one step.
	// Remote deletions missed by this instance are healed, while local writes that
	// did not reach the store yet are dropped until written again.
	ResyncReplace
)

// String returns the mode name
func (m ResyncMode) String() string {
	switch m {
	case ResyncMerge:
		return "merge"
	case ResyncReplace:
		return "replace"
	default:
		return fmt.Sprintf("ResyncMode(%d)", m)
	}
}

const (
	defaultShutdownTimeout    = 2 * time.Second
	defaultWriteTimeout       = 5 * time.Second
	defaultReadTimeout        = 5 * time.Second
	defaultInitialLoadRetries = 3
)

var mapNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Config holds the settings of a replicated Map
type Config struct {
	logger             log.Logger
	resyncInterval     time.Duration
	resyncMode         ResyncMode
	shutdownTimeout    time.Duration
	writeTimeout       time.Duration
	readTimeout        time.Duration
	initialLoadRetries int
	valueEqual         any
	meterProvider      metric.MeterProvider
}

// NewConfig creates a Config from the default settings and the given options
func NewConfig(opts ...Option) *Config {
	config := defaultConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

func defaultConfig() *Config {
	return &Config{
		logger:             log.DefaultLogger,
		resyncMode:         ResyncMerge,
		shutdownTimeout:    defaultShutdownTimeout,
		writeTimeout:       defaultWriteTimeout,
		readTimeout:        defaultReadTimeout,
		initialLoadRetries: defaultInitialLoadRetries,
	}
}

// Logger returns the configured logger
func (c *Config) Logger() log.Logger {
	return c.logger
}

// ResyncInterval returns the periodic resync interval. Zero means disabled.
func (c *Config) ResyncInterval() time.Duration {
	return c.resyncInterval
}

// ResyncMode returns the periodic resync mode
func (c *Config) ResyncMode() ResyncMode {
	return c.resyncMode
}

// ShutdownTimeout returns how long Close waits for an in-progress resync
func (c *Config) ShutdownTimeout() time.Duration {
	return c.shutdownTimeout
}

// Sanitize replaces unset values with their defaults
func (c *Config) Sanitize() {
	if c.logger == nil {
		c.logger = log.DefaultLogger
	}

	if c.resyncInterval < 0 {
		c.resyncInterval = 0
	}

	if c.shutdownTimeout <= 0 {
		c.shutdownTimeout = defaultShutdownTimeout
	}

	if c.writeTimeout <= 0 {
		c.writeTimeout = defaultWriteTimeout
	}

	if c.readTimeout <= 0 {
		c.readTimeout = defaultReadTimeout
	}

	if c.initialLoadRetries <= 0 {
		c.initialLoadRetries = 1
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddAssertion(c.logger != nil, "logger is required").
		AddAssertion(c.resyncMode == ResyncMerge || c.resyncMode == ResyncReplace, fmt.Sprintf("invalid resync mode %s", c.resyncMode)).
		AddValidator(validation.NewPositiveDurationValidator("shutdownTimeout", c.shutdownTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("writeTimeout", c.writeTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("readTimeout", c.readTimeout)).
		AddAssertion(c.initialLoadRetries > 0, "initialLoadRetries must be greater than zero").
		Validate()
}

// validateMapName checks that the name can be used to derive channel, bucket and key names
func validateMapName(name string) error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("name", name)).
		AddValidator(validation.NewPatternValidator(mapNamePattern, name, fmt.Errorf("name=(%s): %w", name, gerrors.ErrInvalidMapName))).
		Validate()
}
