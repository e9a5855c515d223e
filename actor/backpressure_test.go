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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/kestrel/backpressure"
	gerrors "github.com/tochemey/kestrel/errors"
)

const mailboxCapacity = 4

// fillMailbox parks the blocker on its first message, then fills its
// mailbox until a send is refused. It returns the number of queued messages
// and the refusal.
func fillMailbox(t *testing.T, pid *PID, actor *blocker) (int, error) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, pid.Tell(ctx, new(ping)))
	<-actor.started

	for queued := range 2 * mailboxCapacity {
		if err := pid.Tell(ctx, new(ping)); err != nil {
			return queued, err
		}
	}
	return 2 * mailboxCapacity, nil
}

func TestBackpressure(t *testing.T) {
	t.Run("With DropNew strategy", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)
		events := newEventCollector(t, system)

		actor := newBlocker()
		defer close(actor.release)

		pid, err := system.Spawn(ctx, "blocker", actor, WithBoundedMailbox(mailboxCapacity), WithBatchSize(1))
		require.NoError(t, err)

		queued, err := fillMailbox(t, pid, actor)
		assert.Equal(t, mailboxCapacity, queued)
		assert.ErrorIs(t, err, gerrors.ErrMailboxFull)
		assert.Equal(t, backpressure.Critical, pid.Metric(ctx).BackpressureState())
		assert.EqualValues(t, 1, system.Metric(ctx).DeadlettersCount())

		// a high priority message is still refused by a full mailbox
		assert.ErrorIs(t, pid.Tell(ctx, new(ping), WithHighPriority()), gerrors.ErrMailboxFull)

		require.Eventually(t, func() bool {
			_, ok := findEvent(events, func(event *BackpressureChanged) bool {
				return event.Actor == pid.ID() && event.To == backpressure.Critical
			})
			return ok
		}, waitFor, tick)

		require.Eventually(t, func() bool {
			_, ok := findEvent(events, func(event *Deadletter) bool {
				return event.Receiver == pid.ID() && event.Reason == gerrors.ErrMailboxFull.Error()
			})
			return ok
		}, waitFor, tick)
	})
	t.Run("With recovery once drained", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		actor := newBlocker()
		pid, err := system.Spawn(ctx, "blocker", actor, WithBoundedMailbox(mailboxCapacity), WithBatchSize(1))
		require.NoError(t, err)

		_, err = fillMailbox(t, pid, actor)
		require.ErrorIs(t, err, gerrors.ErrMailboxFull)
		close(actor.release)

		require.Eventually(t, func() bool { return actor.received.Load() == mailboxCapacity+1 }, waitFor, tick)
		require.Eventually(t, func() bool {
			return pid.Metric(ctx).BackpressureState() == backpressure.Normal
		}, waitFor, tick)
		assert.NoError(t, pid.Tell(ctx, new(ping)))
	})
	t.Run("With blocking send timing out", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		actor := newBlocker()
		defer close(actor.release)

		pid, err := system.Spawn(ctx, "blocker", actor, WithBoundedMailbox(mailboxCapacity), WithBatchSize(1))
		require.NoError(t, err)

		_, err = fillMailbox(t, pid, actor)
		require.ErrorIs(t, err, gerrors.ErrMailboxFull)

		err = pid.Tell(ctx, new(ping), WithBlocking(30*time.Millisecond))
		assert.ErrorIs(t, err, gerrors.ErrBackpressureTimeout)
	})
	t.Run("With Block strategy", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		actor := newBlocker()
		pid, err := system.Spawn(ctx, "blocker", actor,
			WithBoundedMailbox(mailboxCapacity),
			WithBatchSize(1),
			WithBackpressure(backpressure.WithStrategy(backpressure.Block), backpressure.WithBlockTimeout(waitFor)))
		require.NoError(t, err)

		require.NoError(t, pid.Tell(ctx, new(ping)))
		<-actor.started
		for range mailboxCapacity {
			require.NoError(t, pid.Tell(ctx, new(ping)))
		}

		done := make(chan error, 1)
		go func() {
			done <- pid.Tell(ctx, new(ping))
		}()

		select {
		case <-done:
			t.Fatal("send returned on a full mailbox")
		case <-time.After(20 * time.Millisecond):
		}

		close(actor.release)
		require.NoError(t, <-done)
		require.Eventually(t, func() bool { return actor.received.Load() == mailboxCapacity+2 }, waitFor, tick)
	})
	t.Run("With DropOldest strategy", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)
		events := newEventCollector(t, system)

		actor := newBlocker()
		defer close(actor.release)

		pid, err := system.Spawn(ctx, "blocker", actor,
			WithBoundedMailbox(mailboxCapacity),
			WithBatchSize(1),
			WithBackpressure(backpressure.WithStrategy(backpressure.DropOldest)))
		require.NoError(t, err)

		queued, err := fillMailbox(t, pid, actor)
		require.NoError(t, err)
		assert.Equal(t, 2*mailboxCapacity, queued)
		assert.EqualValues(t, mailboxCapacity, pid.Metric(ctx).MailboxSize())

		require.Eventually(t, func() bool {
			_, ok := findEvent(events, func(event *Deadletter) bool {
				return event.Receiver == pid.ID() && event.Reason == gerrors.ErrMessageEvicted.Error()
			})
			return ok
		}, waitFor, tick)
	})
}
