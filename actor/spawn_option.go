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

package actor

import (
	"time"

	"github.com/tochemey/kestrel/backpressure"
	"github.com/tochemey/kestrel/internal/validation"
	"github.com/tochemey/kestrel/supervisor"
)

const (
	// DefaultBatchSize is the number of messages an actor takes from its
	// mailbox per iteration
	DefaultBatchSize = 10
	// DefaultPollTimeout is how long an idle actor waits for a message before
	// checking whether it has been asked to stop
	DefaultPollTimeout = time.Millisecond
	// DefaultInitMaxRetries is the number of PreStart attempts
	DefaultInitMaxRetries = 3
	// DefaultInitTimeout bounds the whole PreStart sequence
	DefaultInitTimeout = time.Second
)

// spawnConfig defines the configuration to apply when creating an actor
type spawnConfig struct {
	mailbox        Mailbox
	capacity       int
	unbounded      bool
	batchSize      int
	pollTimeout    time.Duration
	supervisor     *supervisor.Supervisor
	backpressure   []backpressure.Option
	initMaxRetries int
	initTimeout    time.Duration
}

// newSpawnConfig creates an instance of spawnConfig with the system defaults
func newSpawnConfig(system *ActorSystem, opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		capacity:       system.defaultMailboxCapacity,
		unbounded:      system.defaultMailboxCapacity <= 0,
		batchSize:      DefaultBatchSize,
		pollTimeout:    DefaultPollTimeout,
		supervisor:     system.defaultSupervisor,
		initMaxRetries: DefaultInitMaxRetries,
		initTimeout:    DefaultInitTimeout,
	}

	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// Validate checks the configuration
func (c *spawnConfig) Validate() error {
	return validation.New(validation.AllErrors()).
		AddAssertion(c.batchSize >= 1, "batch size must be at least 1").
		AddAssertion(c.pollTimeout > 0, "poll timeout must be positive").
		AddAssertion(c.mailbox != nil || c.unbounded || c.capacity >= 1, "mailbox capacity must be at least 1").
		AddAssertion(c.supervisor != nil, "supervisor is required").
		AddAssertion(c.initMaxRetries >= 1, "init max retries must be at least 1").
		AddAssertion(c.initTimeout > 0, "init timeout must be positive").
		Validate()
}

// newMailbox returns the configured mailbox
func (c *spawnConfig) newMailbox() Mailbox {
	switch {
	case c.mailbox != nil:
		return c.mailbox
	case c.unbounded:
		return NewUnboundedMailbox()
	default:
		return NewBoundedMailbox(c.capacity)
	}
}

// SpawnOption is the interface that applies to
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

// spawnOption implements the SpawnOption interface.
type spawnOption func(config *spawnConfig)

// Apply sets the Option value of a config.
func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithMailbox sets the mailbox to use when starting the given actor.
// The mailbox must not be shared with another actor.
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = mailbox
	})
}

// WithBoundedMailbox gives the actor a BoundedMailbox of the given capacity
func WithBoundedMailbox(capacity int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = nil
		config.unbounded = false
		config.capacity = capacity
	})
}

// WithUnboundedMailbox gives the actor an UnboundedMailbox
func WithUnboundedMailbox() SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = nil
		config.unbounded = true
	})
}

// WithBatchSize sets how many messages the actor takes from its mailbox per
// iteration
func WithBatchSize(size int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.batchSize = size
	})
}

// WithPollTimeout sets how long an idle actor waits for a message before
// checking whether it has been asked to stop
func WithPollTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.pollTimeout = timeout
	})
}

// WithSupervisor sets the supervisor to apply when the actor fails
// during message processing. It determines whether the actor resumes,
// restarts, stops or escalates the failure to its ancestors.
func WithSupervisor(supervisor *supervisor.Supervisor) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.supervisor = supervisor
	})
}

// WithBackpressure configures the flow control gate in front of the actor
// mailbox. It only has an effect on bounded mailboxes.
func WithBackpressure(opts ...backpressure.Option) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.backpressure = append(config.backpressure, opts...)
	})
}

// WithInitMaxRetries sets how many times PreStart is attempted
func WithInitMaxRetries(retries int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initMaxRetries = retries
	})
}

// WithInitTimeout bounds the PreStart attempts
func WithInitTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initTimeout = timeout
	})
}
