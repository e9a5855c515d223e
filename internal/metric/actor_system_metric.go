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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// ActorSystemMetric groups the instruments recorded by the actor runtime
type ActorSystemMetric struct {
	processedCount   metric.Int64Counter
	failureCount     metric.Int64Counter
	restartCount     metric.Int64Counter
	deadletterCount  metric.Int64Counter
	transitionsCount metric.Int64Counter
	mailboxSize      metric.Int64ObservableGauge
}

// NewActorSystemMetric creates the runtime instruments on the given meter
func NewActorSystemMetric(meter metric.Meter) (*ActorSystemMetric, error) {
	x := new(ActorSystemMetric)
	var err error

	if x.processedCount, err = meter.Int64Counter(
		"actor_processed_count",
		metric.WithDescription("Total number of messages processed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processedCount instrument, %w", err)
	}

	if x.failureCount, err = meter.Int64Counter(
		"actor_failure_count",
		metric.WithDescription("Total number of messages whose handling failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}

	if x.restartCount, err = meter.Int64Counter(
		"actor_restart_count",
		metric.WithDescription("Total number of restarts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create restartCount instrument, %w", err)
	}

	if x.deadletterCount, err = meter.Int64Counter(
		"actor_deadletter_count",
		metric.WithDescription("Total number of messages sent to dead letters"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deadletterCount instrument, %w", err)
	}

	if x.transitionsCount, err = meter.Int64Counter(
		"actor_backpressure_transition_count",
		metric.WithDescription("Total number of backpressure state transitions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create transitionsCount instrument, %w", err)
	}

	if x.mailboxSize, err = meter.Int64ObservableGauge(
		"actor_mailbox_size",
		metric.WithDescription("Number of messages waiting in the actor mailbox"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mailboxSize instrument, %w", err)
	}

	return x, nil
}

// ProcessedCount returns the processed messages counter
func (x *ActorSystemMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// FailureCount returns the failed messages counter
func (x *ActorSystemMetric) FailureCount() metric.Int64Counter {
	return x.failureCount
}

// RestartCount returns the restarts counter
func (x *ActorSystemMetric) RestartCount() metric.Int64Counter {
	return x.restartCount
}

// DeadletterCount returns the dead letters counter
func (x *ActorSystemMetric) DeadletterCount() metric.Int64Counter {
	return x.deadletterCount
}

// TransitionsCount returns the backpressure transitions counter
func (x *ActorSystemMetric) TransitionsCount() metric.Int64Counter {
	return x.transitionsCount
}

// MailboxSize returns the mailbox depth gauge
func (x *ActorSystemMetric) MailboxSize() metric.Int64ObservableGauge {
	return x.mailboxSize
}
