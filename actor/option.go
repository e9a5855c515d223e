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

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/kestrel/log"
	"github.com/tochemey/kestrel/supervisor"
)

// DefaultShutdownTimeout bounds the actor system shutdown
const DefaultShutdownTimeout = 30 * time.Second

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(sys *ActorSystem)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*ActorSystem)

// Apply applies the actor system's option
func (f OptionFunc) Apply(c *ActorSystem) {
	f(c)
}

// WithLogger sets the actor system custom log
func WithLogger(logger log.Logger) Option {
	return OptionFunc(
		func(a *ActorSystem) {
			a.logger = logger
		},
	)
}

// WithShutdownTimeout sets the shutdown timeout
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(
		func(a *ActorSystem) {
			a.shutdownTimeout = timeout
		},
	)
}

// WithDefaultSupervisor sets the supervisor of actors spawned without one
func WithDefaultSupervisor(supervisor *supervisor.Supervisor) Option {
	return OptionFunc(
		func(a *ActorSystem) {
			a.defaultSupervisor = supervisor
		},
	)
}

// WithDefaultMailboxCapacity sets the mailbox capacity of actors spawned
// without a mailbox option. Zero, the default, gives them an unbounded
// mailbox.
func WithDefaultMailboxCapacity(capacity int) Option {
	return OptionFunc(
		func(a *ActorSystem) {
			a.defaultMailboxCapacity = capacity
		},
	)
}

// WithMetrics records the runtime metrics with the given MeterProvider.
// Without it the global OpenTelemetry MeterProvider is used.
func WithMetrics(provider metric.MeterProvider) Option {
	return OptionFunc(
		func(a *ActorSystem) {
			a.meterProvider = provider
		},
	)
}
