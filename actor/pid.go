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
	"strings"
	"time"

	gerrors "github.com/tochemey/kestrel/errors"
)

// PID is a weak handle to an actor.
//
// Holding a PID never keeps an actor alive: every operation resolves the
// handle through the actor system registry, and once the actor has stopped
// the PID fails with ErrDead. A PID only ever addresses the actor
// incarnation it was created for, even when a new actor is later spawned
// under the same name.
type PID struct {
	id     string
	uid    string
	system *ActorSystem
}

func newPID(id, uid string, system *ActorSystem) *PID {
	return &PID{id: id, uid: uid, system: system}
}

// ID returns the actor path, for instance /orders/order-42
func (pid *PID) ID() string {
	return pid.id
}

// Name returns the actor name, the last segment of its path
func (pid *PID) Name() string {
	return pid.id[strings.LastIndex(pid.id, "/")+1:]
}

// String returns the actor path
func (pid *PID) String() string {
	return pid.id
}

// Equals is a convenient method to compare two PIDs
func (pid *PID) Equals(to *PID) bool {
	if pid == nil || to == nil {
		return pid == to
	}
	return pid.id == to.id && pid.uid == to.uid
}

// MarshalText encodes the actor path. Use ActorSystem.ResolvePID to turn it
// back into a PID.
func (pid *PID) MarshalText() ([]byte, error) {
	return []byte(pid.id), nil
}

// ActorSystem returns the actor system the PID belongs to
func (pid *PID) ActorSystem() *ActorSystem {
	return pid.system
}

// IsRunning returns true when the actor is alive and accepting messages
func (pid *PID) IsRunning() bool {
	c, err := pid.resolve()
	return err == nil && c.isAlive()
}

// Parent returns the parent PID. It is nil for a top-level actor or a dead
// actor.
func (pid *PID) Parent() *PID {
	c, err := pid.resolve()
	if err != nil || c.parent == nil {
		return nil
	}
	return c.parent.pid
}

// Children returns the live children of the actor
func (pid *PID) Children() []*PID {
	c, err := pid.resolve()
	if err != nil {
		return nil
	}
	return c.childrenPIDs()
}

// Metric returns a snapshot of the actor metrics.
// It returns nil when the actor is no longer alive.
func (pid *PID) Metric(context.Context) *ActorMetric {
	c, err := pid.resolve()
	if err != nil {
		return nil
	}
	return c.metric()
}

// Tell sends an asynchronous message to the actor.
// It is a shortcut for the package-level Tell.
func (pid *PID) Tell(ctx context.Context, message any, opts ...SendOption) error {
	return Tell(ctx, pid, message, opts...)
}

// Ask sends a message and waits for the reply up to timeout.
// It is a shortcut for the package-level Ask.
func (pid *PID) Ask(ctx context.Context, message any, timeout time.Duration, opts ...SendOption) (any, error) {
	return Ask(ctx, pid, message, timeout, opts...)
}

// resolve returns the live cell behind the PID
func (pid *PID) resolve() (*cell, error) {
	if pid == nil || pid.system == nil {
		return nil, gerrors.ErrUndefinedActor
	}

	c, ok := pid.system.registry.Load(pid.id)
	if !ok || c.uid != pid.uid {
		return nil, gerrors.ErrDead
	}
	return c, nil
}
