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
	"errors"
	"time"

	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/internal/future"
)

// Tell sends an asynchronous message to an actor.
//
// The error reports whether the mailbox accepted the message: ErrDead when
// the actor is gone, ErrMailboxFull or ErrBackpressureTimeout when the
// backpressure strategy of the receiver refused it. A nil error does not
// mean the message has been handled.
func Tell(ctx context.Context, to *PID, message any, opts ...SendOption) error {
	c, err := to.resolve()
	if err != nil {
		return err
	}

	config := newSendConfig(opts...)
	return c.send(ctx, newEnvelope(ctx, message, config.sender), config)
}

// Ask sends a message to an actor and waits up to timeout for the reply
// given through ReceiveContext.Response.
//
// It returns ErrRequestTimeout when no reply arrived in time and ErrDead
// when the actor stopped before replying. The handling of the message goes
// on after the caller has given up.
func Ask(ctx context.Context, to *PID, message any, timeout time.Duration, opts ...SendOption) (any, error) {
	if timeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}

	c, err := to.resolve()
	if err != nil {
		return nil, err
	}

	config := newSendConfig(opts...)
	reply := future.New[any]()
	env := newEnvelope(ctx, message, config.sender).withReply(reply)
	if err := c.send(ctx, env, config); err != nil {
		return nil, err
	}

	response, err := reply.Await(ctx, timeout)
	if errors.Is(err, future.ErrTimeout) {
		return nil, gerrors.ErrRequestTimeout
	}
	return response, err
}
