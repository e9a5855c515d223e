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
	"github.com/google/uuid"
)

// ScheduleOption configures a scheduled message
type ScheduleOption func(*scheduleConfig)

type scheduleConfig struct {
	sender    *PID
	reference string
}

func newScheduleConfig(opts ...ScheduleOption) *scheduleConfig {
	config := &scheduleConfig{reference: uuid.NewString()}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithScheduleSender sets the sender the receiver sees on every delivery
func WithScheduleSender(sender *PID) ScheduleOption {
	return func(c *scheduleConfig) {
		c.sender = sender
	}
}

// WithReference names the schedule so that it can be cancelled with
// CancelSchedule. Without it a random reference is used and the schedule
// only ends with the actor system.
func WithReference(reference string) ScheduleOption {
	return func(c *scheduleConfig) {
		c.reference = reference
	}
}
