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
)

// Actor defines the behavior of an actor.
//
// An actor processes the messages of its mailbox one at a time on its own
// goroutine, so its fields never need synchronization as long as they are
// only touched from the hooks below.
//
// The lifecycle of an actor follows three phases:
//  1. PreStart – setup before the first message, and again after each restart
//  2. Receive – message handling
//  3. PostStop – cleanup when the actor stops, and before each restart
//
// A restart keeps the actor value and its mailbox: PreStart is where the
// actor resets its state.
type Actor interface {
	// PreStart is invoked before the actor handles any message.
	// An error prevents the actor from starting.
	PreStart(ctx context.Context) error

	// Receive handles a message. A failure is reported through
	// ReceiveContext.Err or by panicking; the supervisor then decides what
	// happens to the actor.
	Receive(ctx *ReceiveContext)

	// PostStop is invoked once the actor has handled its last message.
	PostStop(ctx context.Context) error
}

// Reprocessor is implemented by actors that want a failed message delivered
// again after a restart. It is only consulted under the restart strategy.
type Reprocessor interface {
	// OnError reports whether message should be redelivered to the
	// restarted actor ahead of the rest of its mailbox.
	OnError(ctx context.Context, message any, err error) bool
}

// RecoveryProvider is implemented by actors whose state is rebuilt from
// messages kept outside of the mailbox, a journal for instance.
type RecoveryProvider interface {
	// Recover returns the messages to deliver first when the actor restarts
	Recover(ctx context.Context) ([]any, error)
}

// FuncActor turns a receive function into an Actor. It is handy for tests
// and small stateless actors.
type FuncActor func(ctx *ReceiveContext)

// enforce compilation error
var _ Actor = FuncActor(nil)

// PreStart does nothing
func (f FuncActor) PreStart(context.Context) error {
	return nil
}

// Receive calls the function
func (f FuncActor) Receive(ctx *ReceiveContext) {
	f(ctx)
}

// PostStop does nothing
func (f FuncActor) PostStop(context.Context) error {
	return nil
}
