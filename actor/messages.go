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

// eventsTopic is the event stream topic lifecycle events are published on
const eventsTopic = "kestrel.events"

// PoisonPill stops the receiving actor once the messages queued before it
// have been handled.
type PoisonPill struct{}

// ActorStarted is published when an actor has started
type ActorStarted struct {
	Actor     string
	StartedAt time.Time
}

// ActorRestarted is published when an actor has been restarted
type ActorRestarted struct {
	Actor       string
	RestartedAt time.Time
	Reason      string
}

// ActorStopped is published when an actor has stopped
type ActorStopped struct {
	Actor     string
	StoppedAt time.Time
}

// ActorEscalated is published when an actor hands a failure to its
// ancestors
type ActorEscalated struct {
	Actor       string
	EscalatedAt time.Time
	Reason      string
}

// BackpressureChanged is published on every backpressure state transition
// of an actor mailbox
type BackpressureChanged struct {
	Actor     string
	From      backpressure.State
	To        backpressure.State
	FillRatio float64
	ChangedAt time.Time
}

// Deadletter describes a message that could not be handled
type Deadletter struct {
	// Sender is the sender id. It is empty when sent from outside an actor.
	Sender string
	// Receiver is the id of the actor the message was addressed to
	Receiver string
	Message  any
	SendTime time.Time
	Reason   string
}
