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

package chain

import (
	"context"

	"go.uber.org/multierr"
)

// Chain runs a sequence of steps and collects their errors.
// With WithFailFast the first failing step ends the sequence.
type Chain struct {
	failFast bool
	ctx      context.Context
	err      error
}

// Option configures a Chain at creation time.
type Option func(*Chain)

// New creates a Chain. Steps run in insertion order.
func New(opts ...Option) *Chain {
	chain := &Chain{ctx: context.Background()}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// WithFailFast stops the chain on the first error.
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// WithContext sets the context handed to context runners
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}

// AddRunner runs fn unless the chain already failed in fail-fast mode
func (c *Chain) AddRunner(fn func() error) *Chain {
	return c.AddContextRunner(func(context.Context) error { return fn() })
}

// AddContextRunner runs fn with the chain context
func (c *Chain) AddContextRunner(fn func(ctx context.Context) error) *Chain {
	if c.failFast && c.err != nil {
		return c
	}
	c.err = multierr.Append(c.err, fn(c.ctx))
	return c
}

// AddContextRunnerIf runs fn only when condition holds
func (c *Chain) AddContextRunnerIf(condition bool, fn func(ctx context.Context) error) *Chain {
	if !condition {
		return c
	}
	return c.AddContextRunner(fn)
}

// Run returns the collected error
func (c *Chain) Run() error {
	return c.err
}
