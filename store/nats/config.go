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

package nats

import (
	"regexp"
	"strings"

	"github.com/tochemey/replicamap/internal/validation"
)

const defaultReplicas = 1

var bucketPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config holds the settings of the JetStream KeyValue store
type Config struct {
	// Bucket is the KeyValue bucket holding the map entries. One bucket per map.
	// Must be alphanumeric, dashes, or underscores.
	Bucket string
	// Description is attached to the bucket when it is created
	Description string
	// Replicas is the number of bucket replicas in a JetStream cluster. Defaults to 1.
	Replicas int
	// Concurrency bounds the number of concurrent calls of PutAll and Clear.
	// Defaults to 16.
	Concurrency int
}

var _ validation.Validator = (*Config)(nil)

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("Bucket", c.Bucket)).
		AddAssertion(bucketPattern.MatchString(c.Bucket), "Bucket must be alphanumeric, dashes, or underscores").
		AddAssertion(c.Replicas > 0, "Replicas must be greater than 0").
		AddAssertion(c.Concurrency > 0, "Concurrency must be greater than 0").
		Validate()
}

// Sanitize sets defaults for empty fields.
func (c *Config) Sanitize() {
	c.Bucket = strings.TrimSpace(c.Bucket)
	if c.Replicas == 0 {
		c.Replicas = defaultReplicas
	}
	if c.Concurrency == 0 {
		c.Concurrency = 16
	}
}
