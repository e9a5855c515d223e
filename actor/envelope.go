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
	"context"
	"time"

	"github.com/tochemey/kestrel/internal/future"
)

// Envelope wraps a message travelling to an actor mailbox together with its
// routing metadata.
//
// The payload is never mutated by the runtime. The attempts counter is only
// touched by the receiving actor's loop, which owns the envelope once it has
// been taken out of the mailbox.
type Envelope struct {
	ctx      context.Context
	message  any
	sender   *PID
	reply    *future.Future[any]
	sendTime time.Time
	attempts uint32
}

// newEnvelope keeps the values of ctx but not its cancellation: a sender
// giving up does not cancel the handling of its message.
func newEnvelope(ctx context.Context, message any, sender *PID) *Envelope {
	return &Envelope{
		ctx:      context.WithoutCancel(ctx),
		message:  message,
		sender:   sender,
		sendTime: time.Now(),
	}
}

// Message returns the payload
func (e *Envelope) Message() any {
	return e.message
}

// Sender returns the sender PID. It is nil when the message was sent from
// outside of an actor.
func (e *Envelope) Sender() *PID {
	return e.sender
}

// SendTime returns the time the message was sent
func (e *Envelope) SendTime() time.Time {
	return e.sendTime
}

// Attempts returns how many times the message has been redelivered after a
// failure
func (e *Envelope) Attempts() uint32 {
	return e.attempts
}

// withReply attaches the promise an Ask caller waits on
func (e *Envelope) withReply(reply *future.Future[any]) *Envelope {
	e.reply = reply
	return e
}
