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

	"github.com/stretchr/testify/require"

	"github.com/tochemey/kestrel/log"
)

func newTestKit(t *testing.T, opts ...Option) (*TestKit, context.Context) {
	ctx := context.Background()
	return New(ctx, t, opts...), ctx
}

func TestTestKit(t *testing.T) {
	t.Run("ActorSystem", func(t *testing.T) {
		kit, _ := newTestKit(t)

		sys := kit.ActorSystem()
		require.NotNil(t, sys)
		require.True(t, sys.Running())
		require.Equal(t, "testkit", sys.Name())
	})
	t.Run("Spawn", func(t *testing.T) {
		kit, _ := newTestKit(t)
		ctx := context.Background()

		pid := kit.Spawn(ctx, "spawn-actor", &pinger{})
		require.True(t, pid.IsRunning())

		resolved, err := kit.ActorSystem().ResolvePID("/spawn-actor")
		require.NoError(t, err)
		require.True(t, pid.Equals(resolved))
	})
	t.Run("NewProbe", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		probe := kit.NewProbe(ctx)
		other := kit.NewProbe(ctx)
		require.False(t, probe.PID().Equals(other.PID()))

		probe.Stop()
		require.False(t, probe.PID().IsRunning())
		other.Stop()
	})
	t.Run("WithLogging", func(t *testing.T) {
		kit, _ := newTestKit(t, WithLogging(log.ErrorLevel))
		require.NotNil(t, kit.ActorSystem().Logger())
	})
	t.Run("Shutdown", func(t *testing.T) {
		kit, ctx := newTestKit(t)
		kit.Shutdown(ctx)
		require.False(t, kit.ActorSystem().Running())
	})
}
