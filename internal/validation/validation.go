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

package validation

import (
	"go.uber.org/multierr"
)

// Validator checks a single rule
type Validator interface {
	Validate() error
}

// Chain runs a list of validators and reports their violations as a single error
type Chain struct {
	failFast   bool
	validators []Validator
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// New creates a Chain that reports every violation unless FailFast is set
func New(opts ...ChainOption) *Chain {
	chain := &Chain{validators: make([]Validator, 0)}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// FailFast stops the chain at the first violation
func FailFast() ChainOption {
	return func(c *Chain) { c.failFast = true }
}

// AddValidator appends a validator to the chain
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion appends a condition that must hold, failing with message otherwise
func (c *Chain) AddAssertion(isTrue bool, message string) *Chain {
	return c.AddValidator(NewBooleanValidator(isTrue, message))
}

// Validate runs the chain
func (c *Chain) Validate() error {
	var violations error
	for _, v := range c.validators {
		if err := v.Validate(); err != nil {
			if c.failFast {
				return err
			}
			violations = multierr.Append(violations, err)
		}
	}
	return violations
}
