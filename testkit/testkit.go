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

// Package testkit helps unit testing actors. A TestKit owns a running
// actor system and hands out probes, actors that record what they receive
// so that tests can assert on the replies of the actor under test.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/tochemey/kestrel/actor"
	"github.com/tochemey/kestrel/log"
)

// TestKit runs an actor system for the duration of a test
type TestKit struct {
	system         *actor.ActorSystem
	t              *testing.T
	logger         log.Logger
	defaultTimeout time.Duration
}

// New starts an actor system for t. It is stopped by Shutdown, or when the
// test ends at the latest.
func New(ctx context.Context, t *testing.T, opts ...Option) *TestKit {
	t.Helper()
	kit := &TestKit{
		t:              t,
		logger:         log.DiscardLogger,
		defaultTimeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt.Apply(kit)
	}

	system, err := actor.NewActorSystem("testkit",
		actor.WithLogger(kit.logger),
		actor.WithShutdownTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err.Error())
	}

	if err := system.Start(ctx); err != nil {
		t.Fatal(err.Error())
	}

	kit.system = system
	t.Cleanup(func() {
		if system.Running() {
			_ = system.Stop(context.WithoutCancel(ctx))
		}
	})
	return kit
}

// ActorSystem returns the actor system of the kit
func (k *TestKit) ActorSystem() *actor.ActorSystem {
	return k.system
}

// Spawn creates a top-level actor and fails the test when it cannot start
func (k *TestKit) Spawn(ctx context.Context, name string, a actor.Actor, opts ...actor.SpawnOption) *actor.PID {
	k.t.Helper()
	opts = append([]actor.SpawnOption{
		actor.WithInitTimeout(time.Second),
		actor.WithInitMaxRetries(5),
	}, opts...)

	pid, err := k.system.Spawn(ctx, name, a, opts...)
	if err != nil {
		k.t.Fatal(err.Error())
	}
	return pid
}

// NewProbe spawns a probe
func (k *TestKit) NewProbe(ctx context.Context) Probe {
	k.t.Helper()
	p, err := newProbe(ctx, k.t, k.system, k.defaultTimeout)
	if err != nil {
		k.t.Fatal(err.Error())
	}
	return p
}

// Shutdown stops the actor system
func (k *TestKit) Shutdown(ctx context.Context) {
	k.t.Helper()
	if err := k.system.Stop(ctx); err != nil {
		k.t.Fatal(err.Error())
	}
}
