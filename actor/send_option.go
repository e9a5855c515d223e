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

// SendOption configures a single send
type SendOption func(*sendConfig)

type sendConfig struct {
	sender       *PID
	highPriority bool
	blocking     bool
	timeout      time.Duration
}

func newSendConfig(opts ...SendOption) *sendConfig {
	config := new(sendConfig)
	for _, opt := range opts {
		opt(config)
	}
	return config
}

func (c *sendConfig) backpressure() backpressure.Send {
	return backpressure.Send{
		HighPriority: c.highPriority,
		Blocking:     c.blocking,
		Timeout:      c.timeout,
	}
}

// WithSender sets the sender of the message. The receiver can reply to it.
func WithSender(sender *PID) SendOption {
	return func(c *sendConfig) {
		c.sender = sender
	}
}

// WithHighPriority lets the message bypass the backpressure gate.
// It is still rejected when the mailbox is physically full.
func WithHighPriority() SendOption {
	return func(c *sendConfig) {
		c.highPriority = true
	}
}

// WithBlocking makes the send wait for room in the mailbox, whatever the
// backpressure strategy of the receiver. A zero timeout falls back to the
// block timeout of the receiver, then to the context deadline.
func WithBlocking(timeout time.Duration) SendOption {
	return func(c *sendConfig) {
		c.blocking = true
		c.timeout = timeout
	}
}
