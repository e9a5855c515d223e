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
	"fmt"
	"runtime"

	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/supervisor"
)

// pending is the decision that ended a processing loop. It is carried out
// by the loop goroutine once the batch has been unwound.
type pending struct {
	directive supervisor.Directive
	// failed is the message whose handling produced the directive. It is nil
	// when the loop ended on a stop request.
	failed *Envelope
	err    error
}

// run drives the actor until the loop ends, then applies the pending
// decision. A restart or a resume replaces this goroutine with a new one.
func (c *cell) run() {
	c.apply(c.process())
}

// process takes messages from the mailbox in batches and hands them to the
// actor one at a time. It returns when a stop has been requested or when a
// failure calls for a restart, a stop or an escalation.
func (c *cell) process() pending {
	batch := make([]*Envelope, 0, c.batchSize)
	for {
		clear(batch)
		batch = batch[:0]

		if c.stopRequested.Load() {
			return pending{directive: supervisor.Stop(), err: gerrors.ErrDead}
		}

		env, ok := c.mailbox.Poll(c.pollTimeout)
		if !ok {
			continue
		}

		batch = append(batch, env)
		batch, _ = c.mailbox.DrainInto(batch, c.batchSize-1)
		c.backpressure.Update()

		c.state.Store(int32(processingState))
		processed := 0
		for processed < len(batch) {
			if processed > 0 && c.stopRequested.Load() {
				// the remainder is turned into dead letters by discard
				c.mailbox.PushFront(batch[processed:]...)
				clear(batch)
				return pending{directive: supervisor.Stop(), err: gerrors.ErrDead}
			}

			current := batch[processed]
			// counted before dispatch: a failed message is never put back with
			// the undispatched remainder
			processed++

			directive, err := c.dispatch(current)
			if directive.Action == supervisor.ContinueAction {
				continue
			}

			c.mailbox.PushFront(batch[processed:]...)
			clear(batch)
			return pending{directive: directive, failed: current, err: err}
		}
		c.state.Store(int32(runningState))
	}
}

// dispatch hands one message to the actor and turns a failure into a
// directive
func (c *cell) dispatch(env *Envelope) (supervisor.Directive, error) {
	switch env.message.(type) {
	case *PoisonPill, PoisonPill:
		return supervisor.Stop(), nil
	}

	receiveCtx := newReceiveContext(c, env)
	err := c.handle(receiveCtx)
	if err == nil {
		c.recordProcessed(env)
		return supervisor.Continue(), nil
	}

	c.recordFailure(err)
	c.logger.Errorf("Actor %s failed to handle %T: %v", c.id, env.message, err)

	hook := func(err error) bool {
		reprocessor, ok := c.actor.(Reprocessor)
		return ok && reprocessor.OnError(receiveCtx.Context(), env.message, err)
	}

	directive := c.supervisor.Decide(err, hook)
	if directive.Action == supervisor.EscalateAction {
		// the ancestor resolving the escalation may restart this actor
		directive.Reprocess = hook(err)
	}
	return directive, err
}

// handle invokes the actor and recovers a panic into a PanicError enriched
// with the location of the panic
func (c *cell) handle(receiveCtx *ReceiveContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pc, fn, line, _ := runtime.Caller(2)
			if rerr, ok := r.(error); ok {
				var pe *gerrors.PanicError
				if errors.As(rerr, &pe) {
					err = pe
					return
				}
				err = gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", rerr, runtime.FuncForPC(pc).Name(), fn, line))
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
		}
	}()

	c.actor.Receive(receiveCtx)
	return receiveCtx.getError()
}

// apply carries out the decision that ended the loop
func (c *cell) apply(p pending) {
	switch p.directive.Action {
	case supervisor.RestartAction:
		c.restart(p)
	case supervisor.EscalateAction:
		c.escalate(p)
	case supervisor.ContinueAction:
		c.start()
	default:
		c.shutdown(context.Background(), p)
	}
}
