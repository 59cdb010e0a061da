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
	"strings"

	"github.com/tochemey/replicamap/internal/validation"
)

// etcd rejects transactions with more operations than --max-txn-ops, 128 by default
const defaultTxnBatchSize = 128

// Config holds the settings of the etcd store
type Config struct {
	// Namespace is the key prefix under which the map entries are stored.
	// One namespace per map. A trailing slash is added when missing.
	Namespace string
	// TxnBatchSize is the maximum number of puts sent in one transaction by PutAll.
	// Defaults to 128.
	TxnBatchSize int
}

var _ validation.Validator = (*Config)(nil)

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("Namespace", strings.Trim(c.Namespace, "/"))).
		AddAssertion(c.TxnBatchSize > 0, "TxnBatchSize must be greater than 0").
		Validate()
}

// Sanitize sets defaults for empty fields.
func (c *Config) Sanitize() {
	c.Namespace = strings.TrimSpace(c.Namespace)
	if c.Namespace != "" && !strings.HasSuffix(c.Namespace, "/") {
		c.Namespace += "/"
	}
	if c.TxnBatchSize == 0 {
		c.TxnBatchSize = defaultTxnBatchSize
	}
}
