/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package validation collects configuration violations into a single error
package validation

import (
	"go.uber.org/multierr"
)

// Validator is implemented by every rule and by the configurations that
// validate themselves
type Validator interface {
	Validate() error
}

// ValidatorFunc turns a function into a Validator
type ValidatorFunc func() error

// Validate calls the function
func (f ValidatorFunc) Validate() error {
	return f()
}

// Chain runs a list of validators
type Chain struct {
	stopOnFirst bool
	rules       []Validator
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// FailFast stops the validation on the first violation.
func FailFast() ChainOption {
	return func(c *Chain) { c.stopOnFirst = true }
}

// AllErrors makes the chain report every violation. This is the default.
func AllErrors() ChainOption {
	return func(c *Chain) { c.stopOnFirst = false }
}

// New creates a validation chain
func New(opts ...ChainOption) *Chain {
	c := new(Chain)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddValidator appends v to the chain
func (c *Chain) AddValidator(v Validator) *Chain {
	c.rules = append(c.rules, v)
	return c
}

// AddAssertion appends a rule failing with message when ok is false
func (c *Chain) AddAssertion(ok bool, message string) *Chain {
	return c.AddValidator(NewAssertion(ok, message))
}

// Validate runs the rules in order. The violations are combined with
// multierr unless the chain fails fast.
func (c *Chain) Validate() (err error) {
	for _, rule := range c.rules {
		violation := rule.Validate()
		if violation == nil {
			continue
		}

		if c.stopOnFirst {
			return violation
		}
		err = multierr.Append(err, violation)
	}
	return err
}
