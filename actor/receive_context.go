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

	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/log"
)

// ReceiveContext carries the message being handled together with the
// operations available to the actor while handling it.
//
// A ReceiveContext is only valid within the Receive call it was created for.
// Do not retain it.
//
// Messaging operations do not return errors: a failure is recorded through
// Err, which makes the runtime treat the current message as failed.
//
// Example:
//
//	func (a *Greeter) Receive(ctx *actor.ReceiveContext) {
//	    switch msg := ctx.Message().(type) {
//	    case *Greet:
//	        ctx.Response(&Greeting{Text: "hello " + msg.Name})
//	    default:
//	        ctx.Err(errUnknownMessage)
//	    }
//	}
type ReceiveContext struct {
	ctx  context.Context
	cell *cell
	env  *Envelope
	err  error
}

func newReceiveContext(c *cell, env *Envelope) *ReceiveContext {
	return &ReceiveContext{
		ctx:  env.ctx,
		cell: c,
		env:  env,
	}
}

// Context returns the context the message was sent with, without its
// cancellation
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.ctx
}

// Self returns the PID of the actor handling the message
func (rctx *ReceiveContext) Self() *PID {
	return rctx.cell.pid
}

// Sender returns the sender of the message. It is nil when the message was
// sent from outside of an actor.
func (rctx *ReceiveContext) Sender() *PID {
	return rctx.env.sender
}

// Message returns the message being handled
func (rctx *ReceiveContext) Message() any {
	return rctx.env.message
}

// Attempts returns how many times the message has been redelivered
func (rctx *ReceiveContext) Attempts() uint32 {
	return rctx.env.attempts
}

// Err records a failure of the message handling. The supervisor of the
// actor decides what happens next once Receive returns.
func (rctx *ReceiveContext) Err(err error) {
	rctx.err = err
}

// Response replies to the message. It completes the pending Ask when there
// is one, otherwise the reply is sent to the sender. Without either it is a
// no-op.
func (rctx *ReceiveContext) Response(resp any) {
	if reply := rctx.env.reply; reply != nil {
		reply.Success(resp)
		return
	}

	if sender := rctx.env.sender; sender != nil {
		rctx.Tell(sender, resp)
	}
}

// Tell sends a message to another actor, with the current actor as sender
func (rctx *ReceiveContext) Tell(to *PID, message any, opts ...SendOption) {
	opts = append([]SendOption{WithSender(rctx.Self())}, opts...)
	if err := Tell(rctx.ctx, to, message, opts...); err != nil {
		rctx.Err(err)
	}
}

// Ask sends a message to another actor and waits up to timeout for the
// reply. Failures are recorded through Err and a nil response is returned.
func (rctx *ReceiveContext) Ask(to *PID, message any, timeout time.Duration) any {
	response, err := Ask(rctx.ctx, to, message, timeout, WithSender(rctx.Self()))
	if err != nil {
		rctx.Err(err)
	}
	return response
}

// Forward sends the current message to another actor, keeping the original
// sender. A pending Ask is answered by the actor the message is forwarded to.
func (rctx *ReceiveContext) Forward(to *PID) {
	target, err := to.resolve()
	if err != nil {
		rctx.Err(err)
		return
	}

	env := newEnvelope(rctx.ctx, rctx.env.message, rctx.env.sender)
	env.reply = rctx.env.reply
	if err := target.send(rctx.ctx, env, newSendConfig()); err != nil {
		rctx.Err(err)
	}
}

// Spawn creates a child of the current actor. Failures are recorded
// through Err and a nil PID is returned.
func (rctx *ReceiveContext) Spawn(name string, actor Actor, opts ...SpawnOption) *PID {
	pid, err := rctx.cell.system.spawn(rctx.ctx, rctx.cell, name, actor, opts...)
	if err != nil {
		rctx.Err(err)
		return nil
	}
	return pid
}

// Children returns the live children of the current actor
func (rctx *ReceiveContext) Children() []*PID {
	return rctx.cell.childrenPIDs()
}

// Stop stops a child of the current actor and waits for it to terminate
func (rctx *ReceiveContext) Stop(child *PID) {
	target, err := child.resolve()
	if err != nil {
		rctx.Err(err)
		return
	}

	if target.parent != rctx.cell {
		rctx.Err(gerrors.NewErrActorNotFound(child.ID()))
		return
	}

	ctx, cancel := context.WithTimeout(rctx.ctx, rctx.cell.system.shutdownTimeout)
	defer cancel()
	if err := target.stop(ctx); err != nil {
		rctx.Err(err)
	}
}

// Shutdown stops the current actor once Receive returns. The messages
// still queued become dead letters.
func (rctx *ReceiveContext) Shutdown() {
	rctx.cell.requestStop()
}

// Logger returns the logger of the actor system
func (rctx *ReceiveContext) Logger() log.Logger {
	return rctx.cell.logger
}

// ActorSystem returns the actor system the actor belongs to
func (rctx *ReceiveContext) ActorSystem() *ActorSystem {
	return rctx.cell.system
}

func (rctx *ReceiveContext) getError() error {
	return rctx.err
}
