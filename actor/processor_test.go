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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/kestrel/backpressure"
	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/log"
	"github.com/tochemey/kestrel/supervisor"
)

// failOn fails the handling of one given message
type failOn struct {
	recorder
	fail      string
	reprocess bool
}

func (a *failOn) Receive(ctx *ReceiveContext) {
	a.recorder.Receive(ctx)
	if ctx.Message() == a.fail {
		ctx.Err(errBoom)
	}
}

func (a *failOn) OnError(context.Context, any, error) bool {
	return a.reprocess
}

// stopOn shuts itself down when it handles the given message
type stopOn struct {
	recorder
	stop string
}

func (a *stopOn) Receive(ctx *ReceiveContext) {
	a.recorder.Receive(ctx)
	if ctx.Message() == a.stop {
		ctx.Shutdown()
	}
}

// newIdleCell builds a cell whose loop is driven by the test
func newIdleCell(t *testing.T, actor Actor, opts ...SpawnOption) *cell {
	t.Helper()
	system, err := NewActorSystem("idle", WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	config := newSpawnConfig(system, opts...)
	require.NoError(t, config.Validate())

	c, err := newCell(system, nil, "worker", actor, config)
	require.NoError(t, err)
	require.NoError(t, c.init(context.Background()))
	return c
}

func queued(c *cell) []any {
	buf, _ := c.mailbox.DrainInto(nil, int(c.mailbox.Len()))
	messages := make([]any, 0, len(buf))
	for _, env := range buf {
		messages = append(messages, env.Message())
	}
	return messages
}

func TestProcessor(t *testing.T) {
	t.Run("With restart keeping the undispatched messages", func(t *testing.T) {
		actor := &failOn{fail: "m2"}
		c := newIdleCell(t, actor,
			WithBoundedMailbox(10),
			WithSupervisor(supervisor.NewSupervisor(supervisor.WithStrategy(supervisor.RestartStrategy))))

		for _, msg := range []string{"m1", "m2", "m3"} {
			require.True(t, c.mailbox.Offer(newTestEnvelope(msg)))
		}

		p := c.process()
		assert.Equal(t, supervisor.RestartAction, p.directive.Action)
		assert.False(t, p.directive.Reprocess)
		assert.ErrorIs(t, p.err, errBoom)
		assert.Equal(t, "m2", p.failed.Message())
		assert.EqualValues(t, 1, c.mailbox.Len())

		require.True(t, c.reinitialize(context.Background(), p))
		assert.Equal(t, []any{"m3"}, queued(c))
		assert.Equal(t, []any{"m1", "m2"}, actor.messages())
		assert.EqualValues(t, 1, c.restartCount.Load())
	})
	t.Run("With restart reprocessing the failed message", func(t *testing.T) {
		actor := &failOn{fail: "m2", reprocess: true}
		c := newIdleCell(t, actor,
			WithBoundedMailbox(10),
			WithSupervisor(supervisor.NewSupervisor(supervisor.WithStrategy(supervisor.RestartStrategy))))

		for _, msg := range []string{"m1", "m2", "m3"} {
			require.True(t, c.mailbox.Offer(newTestEnvelope(msg)))
		}

		p := c.process()
		assert.True(t, p.directive.Reprocess)

		require.True(t, c.reinitialize(context.Background(), p))
		assert.Equal(t, []any{"m2", "m3"}, queued(c))
		assert.Equal(t, []any{"m1", "m2"}, actor.messages())
		assert.EqualValues(t, 1, p.failed.Attempts())
	})
	t.Run("With a batch size of one", func(t *testing.T) {
		actor := &failOn{fail: "m1"}
		c := newIdleCell(t, actor,
			WithUnboundedMailbox(),
			WithBatchSize(1),
			WithSupervisor(supervisor.NewSupervisor(supervisor.WithStrategy(supervisor.StopStrategy))))

		for _, msg := range []string{"m1", "m2", "m3"} {
			require.True(t, c.mailbox.Offer(newTestEnvelope(msg)))
		}

		p := c.process()
		assert.Equal(t, supervisor.StopAction, p.directive.Action)
		assert.Equal(t, []any{"m1"}, actor.messages())
		assert.Equal(t, []any{"m2", "m3"}, queued(c))
	})
	t.Run("With stop requested", func(t *testing.T) {
		c := newIdleCell(t, &recorder{})
		c.requestStop()

		p := c.process()
		assert.Equal(t, supervisor.StopAction, p.directive.Action)
		assert.Nil(t, p.failed)
	})
	t.Run("With Shutdown leaving the rest of the batch undispatched", func(t *testing.T) {
		actor := &stopOn{stop: "stop"}
		c := newIdleCell(t, actor, WithBoundedMailbox(10))

		for _, msg := range []string{"stop", "m2", "m3"} {
			require.True(t, c.mailbox.Offer(newTestEnvelope(msg)))
		}

		p := c.process()
		assert.Equal(t, supervisor.StopAction, p.directive.Action)
		assert.ErrorIs(t, p.err, gerrors.ErrDead)
		assert.Nil(t, p.failed)
		assert.Equal(t, []any{"stop"}, actor.messages())
		assert.Equal(t, []any{"m2", "m3"}, queued(c))
	})
	t.Run("With backpressure refreshed after a restart", func(t *testing.T) {
		actor := &recovering{failOn: failOn{fail: "m1"}, journal: []any{"r1", "r2", "r3", "r4"}}
		c := newIdleCell(t, actor,
			WithBoundedMailbox(4),
			WithSupervisor(supervisor.NewSupervisor(supervisor.WithStrategy(supervisor.RestartStrategy))))

		require.True(t, c.mailbox.Offer(newTestEnvelope("m1")))
		p := c.process()
		require.Equal(t, supervisor.RestartAction, p.directive.Action)
		assert.Equal(t, backpressure.Normal, c.backpressure.State())

		require.True(t, c.reinitialize(context.Background(), p))
		assert.EqualValues(t, 4, c.mailbox.Len())
		assert.Equal(t, backpressure.Critical, c.backpressure.State())
	})
	t.Run("With restart budget exhausted", func(t *testing.T) {
		actor := &failOn{fail: "m1"}
		c := newIdleCell(t, actor,
			WithSupervisor(supervisor.NewSupervisor(
				supervisor.WithStrategy(supervisor.RestartStrategy),
				supervisor.WithRetry(1, 0))))

		require.True(t, c.mailbox.Offer(newTestEnvelope("m1")))
		p := c.process()
		require.True(t, c.reinitialize(context.Background(), p))

		require.True(t, c.mailbox.Offer(newTestEnvelope("m1")))
		p = c.process()
		assert.False(t, c.reinitialize(context.Background(), p))
	})
	t.Run("With recovered messages ahead of the mailbox", func(t *testing.T) {
		actor := &recovering{failOn: failOn{fail: "m1", reprocess: true}, journal: []any{"r1", "r2"}}
		c := newIdleCell(t, actor,
			WithSupervisor(supervisor.NewSupervisor(supervisor.WithStrategy(supervisor.RestartStrategy))))

		for _, msg := range []string{"m1", "m2"} {
			require.True(t, c.mailbox.Offer(newTestEnvelope(msg)))
		}

		p := c.process()
		require.True(t, c.reinitialize(context.Background(), p))
		assert.Equal(t, []any{"r1", "r2", "m1", "m2"}, queued(c))
	})
}

// recovering replays a journal on restart
type recovering struct {
	failOn
	journal []any
}

func (a *recovering) Recover(context.Context) ([]any, error) {
	return a.journal, nil
}
