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
)

// Metric defines the actor system metric
type Metric struct {
	deadlettersCount int64
	actorsCount      int64
	uptime           time.Duration
}

// DeadlettersCount returns the total number of dead letters
func (m Metric) DeadlettersCount() int64 {
	return m.deadlettersCount
}

// ActorsCount returns the number of live actors
func (m Metric) ActorsCount() int64 {
	return m.actorsCount
}

// Uptime returns the time elapsed since the actor system started
func (m Metric) Uptime() time.Duration {
	return m.uptime
}

// ActorMetric is a snapshot of an actor's counters
type ActorMetric struct {
	processedCount    uint64
	failureCount      uint64
	restartCount      uint64
	childrenCount     uint64
	mailboxSize       int64
	backpressureState backpressure.State
	uptime            time.Duration
}

// ProcessedCount returns the number of messages handled successfully
func (x ActorMetric) ProcessedCount() uint64 {
	return x.processedCount
}

// FailureCount returns the number of messages whose handling failed
func (x ActorMetric) FailureCount() uint64 {
	return x.failureCount
}

// RestartCount returns the number of restarts
func (x ActorMetric) RestartCount() uint64 {
	return x.restartCount
}

// ChildrenCount returns the number of live children
func (x ActorMetric) ChildrenCount() uint64 {
	return x.childrenCount
}

// MailboxSize returns the number of queued messages
func (x ActorMetric) MailboxSize() int64 {
	return x.mailboxSize
}

// BackpressureState returns the flow control state of the mailbox
func (x ActorMetric) BackpressureState() backpressure.State {
	return x.backpressureState
}

// Uptime returns the time elapsed since the actor last started
func (x ActorMetric) Uptime() time.Duration {
	return x.uptime
}
