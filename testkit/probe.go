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

package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/kestrel/actor"
)

const (
	// MessagesQueueMax bounds the messages a probe holds before its actor
	// stops taking new ones
	MessagesQueueMax = 1000
	// DefaultTimeout is how long an expectation waits by default
	DefaultTimeout = 3 * time.Second
)

// Probe receives the replies of the actor under test
type Probe interface {
	// ExpectMessage fails the test unless the next message equals message
	ExpectMessage(message any)
	// ExpectMessageWithin is ExpectMessage with its own timeout
	ExpectMessageWithin(duration time.Duration, message any)
	// ExpectNoMessage fails the test when a message arrives before the default timeout
	ExpectNoMessage()
	// ExpectAnyMessage returns the next message
	ExpectAnyMessage() any
	// ExpectAnyMessageWithin is ExpectAnyMessage with its own timeout
	ExpectAnyMessageWithin(duration time.Duration) any
	// ExpectMessageOfType returns the next message after checking it has the type of message
	ExpectMessageOfType(message any) any
	// Send tells message to the actor under test, the probe being the sender
	Send(to *actor.PID, message any)
	// SendSync asks message to the actor under test and queues the reply
	SendSync(to *actor.PID, message any, timeout time.Duration)
	// Sender returns the sender of the last message received
	Sender() *actor.PID
	// PID returns the probe actor
	PID() *actor.PID
	// Stop stops the probe actor
	Stop()
}

type envelope struct {
	sender  *actor.PID
	payload any
}

// inbox is the actor behind a probe
type inbox chan envelope

func (inbox) PreStart(context.Context) error { return nil }
func (inbox) PostStop(context.Context) error { return nil }

func (in inbox) Receive(ctx *actor.ReceiveContext) {
	in <- envelope{sender: ctx.Sender(), payload: ctx.Message()}
}

type probe struct {
	t              *testing.T
	ctx            context.Context
	pid            *actor.PID
	inbox          inbox
	lastSender     *actor.PID
	defaultTimeout time.Duration
}

var _ Probe = (*probe)(nil)

func newProbe(ctx context.Context, t *testing.T, system *actor.ActorSystem, timeout time.Duration) (*probe, error) {
	in := make(inbox, MessagesQueueMax)
	pid, err := system.Spawn(ctx, "probe-"+uuid.NewString(), in, actor.WithUnboundedMailbox())
	if err != nil {
		return nil, err
	}

	return &probe{
		t:              t,
		ctx:            ctx,
		pid:            pid,
		inbox:          in,
		defaultTimeout: timeout,
	}, nil
}

func (x *probe) ExpectMessage(message any) {
	x.ExpectMessageWithin(x.defaultTimeout, message)
}

func (x *probe) ExpectMessageWithin(duration time.Duration, message any) {
	x.t.Helper()
	received := x.ExpectAnyMessageWithin(duration)
	require.Equal(x.t, message, received)
}

func (x *probe) ExpectNoMessage() {
	x.t.Helper()
	received, ok := x.next(x.defaultTimeout)
	require.False(x.t, ok, "received unexpected message %v", received)
}

func (x *probe) ExpectAnyMessage() any {
	return x.ExpectAnyMessageWithin(x.defaultTimeout)
}

func (x *probe) ExpectAnyMessageWithin(duration time.Duration) any {
	x.t.Helper()
	received, ok := x.next(duration)
	require.True(x.t, ok, "no message received within %v", duration)
	return received
}

func (x *probe) ExpectMessageOfType(message any) any {
	x.t.Helper()
	received := x.ExpectAnyMessage()
	require.IsType(x.t, message, received)
	return received
}

func (x *probe) Send(to *actor.PID, message any) {
	x.t.Helper()
	require.NoError(x.t, to.Tell(x.ctx, message, actor.WithSender(x.pid)))
}

func (x *probe) SendSync(to *actor.PID, message any, timeout time.Duration) {
	x.t.Helper()
	reply, err := to.Ask(x.ctx, message, timeout, actor.WithSender(x.pid))
	require.NoError(x.t, err)
	x.inbox <- envelope{sender: to, payload: reply}
}

func (x *probe) Sender() *actor.PID {
	return x.lastSender
}

func (x *probe) PID() *actor.PID {
	return x.pid
}

func (x *probe) Stop() {
	x.t.Helper()
	require.NoError(x.t, x.pid.ActorSystem().Kill(x.ctx, x.pid))
}

// next waits up to max for a message
func (x *probe) next(max time.Duration) (any, bool) {
	timer := time.NewTimer(max)
	defer timer.Stop()

	select {
	case env := <-x.inbox:
		x.lastSender = env.sender
		return env.payload, true
	case <-timer.C:
		return nil, false
	}
}
