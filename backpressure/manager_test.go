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

package backpressure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/kestrel/errors"
)

// sliceQueue is a mutex guarded queue used to drive the manager in tests
type sliceQueue struct {
	mu       sync.Mutex
	items    []string
	capacity int
}

func newSliceQueue(capacity int) *sliceQueue {
	return &sliceQueue{capacity: capacity}
}

func (q *sliceQueue) Offer(msg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, msg)
	return true
}

func (q *sliceQueue) Put(ctx context.Context, msg string) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if q.Offer(msg) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q *sliceQueue) EvictOldest() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *sliceQueue) Len() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items))
}

func (q *sliceQueue) Capacity() int64 {
	return int64(q.capacity)
}

func (q *sliceQueue) snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.items...)
}

func (q *sliceQueue) fill(count int) {
	for range count {
		q.Offer("x")
	}
}

func (q *sliceQueue) resize(size int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = make([]string, size)
}

type countingHandler struct {
	accept    bool
	queue     *sliceQueue
	makeRooms int
}

func (h *countingHandler) ShouldAccept(any) bool { return h.accept }

func (h *countingHandler) MakeRoom() bool {
	h.makeRooms++
	_, ok := h.queue.EvictOldest()
	return ok
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("With state monotonicity and hysteresis", func(t *testing.T) {
		queue := newSliceQueue(10)
		manager, err := NewManager[string](queue, WithThresholds(0.5, 0.9, 0.3))
		require.NoError(t, err)

		for size := 0; size <= 4; size++ {
			queue.resize(size)
			assert.Equal(t, Normal, manager.Update(), "size %d", size)
		}
		for size := 5; size <= 8; size++ {
			queue.resize(size)
			assert.Equal(t, Warning, manager.Update(), "size %d", size)
		}
		queue.resize(9)
		assert.Equal(t, Critical, manager.Update())
		queue.resize(10)
		assert.Equal(t, Critical, manager.Update())

		// draining keeps the mailbox in recovery until the recovery threshold
		for _, size := range []int{8, 5, 6, 4} {
			queue.resize(size)
			assert.Equal(t, Recovery, manager.Update(), "size %d", size)
		}
		queue.resize(9)
		assert.Equal(t, Critical, manager.Update())
		queue.resize(6)
		assert.Equal(t, Recovery, manager.Update())
		queue.resize(3)
		assert.Equal(t, Normal, manager.Update())
		queue.resize(5)
		assert.Equal(t, Warning, manager.Update())
	})
	t.Run("With unbounded queue", func(t *testing.T) {
		queue := newSliceQueue(0)
		manager, err := NewManager[string](queue)
		require.NoError(t, err)
		queue.fill(1000)
		assert.Equal(t, Normal, manager.Update())
		require.NoError(t, manager.Offer(ctx, "a", Send{}))
		assert.Zero(t, manager.FillRatio())
	})
	t.Run("With DropOldest", func(t *testing.T) {
		queue := newSliceQueue(3)
		var evicted []any
		manager, err := NewManager[string](queue,
			WithStrategy(DropOldest),
			WithDropHandler(func(msg any, reason error) {
				assert.ErrorIs(t, reason, gerrors.ErrMessageEvicted)
				evicted = append(evicted, msg)
			}))
		require.NoError(t, err)

		for _, msg := range []string{"a", "b", "c"} {
			require.NoError(t, manager.Offer(ctx, msg, Send{}))
		}
		assert.Equal(t, Critical, manager.State())

		require.NoError(t, manager.Offer(ctx, "d", Send{}))
		assert.Equal(t, []string{"b", "c", "d"}, queue.snapshot())
		assert.EqualValues(t, 3, queue.Len())
		assert.Equal(t, []any{"a"}, evicted)
	})
	t.Run("With DropNew", func(t *testing.T) {
		queue := newSliceQueue(3)
		var dropped []any
		manager, err := NewManager[string](queue,
			WithDropHandler(func(msg any, _ error) { dropped = append(dropped, msg) }))
		require.NoError(t, err)
		assert.Equal(t, DropNew, manager.Strategy())

		for _, msg := range []string{"a", "b", "c"} {
			require.NoError(t, manager.Offer(ctx, msg, Send{}))
		}

		err = manager.Offer(ctx, "d", Send{})
		require.ErrorIs(t, err, gerrors.ErrMailboxFull)
		assert.Equal(t, []string{"a", "b", "c"}, queue.snapshot())
		assert.Equal(t, []any{"d"}, dropped)
	})
	t.Run("With DropNew applied from critical threshold", func(t *testing.T) {
		queue := newSliceQueue(10)
		manager, err := NewManager[string](queue, WithThresholds(0.5, 0.9, 0.3))
		require.NoError(t, err)
		queue.fill(9)
		// one physical slot is left but the mailbox is critical
		require.ErrorIs(t, manager.Offer(ctx, "late", Send{}), gerrors.ErrMailboxFull)
		assert.EqualValues(t, 9, queue.Len())
	})
	t.Run("With Block timeout", func(t *testing.T) {
		queue := newSliceQueue(2)
		manager, err := NewManager[string](queue,
			WithStrategy(Block),
			WithBlockTimeout(50*time.Millisecond))
		require.NoError(t, err)
		queue.fill(2)

		start := time.Now()
		err = manager.Offer(ctx, "blocked", Send{})
		elapsed := time.Since(start)
		require.ErrorIs(t, err, gerrors.ErrBackpressureTimeout)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
	})
	t.Run("With Block released by a consumer", func(t *testing.T) {
		queue := newSliceQueue(2)
		manager, err := NewManager[string](queue, WithStrategy(Block))
		require.NoError(t, err)
		queue.fill(2)

		go func() {
			time.Sleep(20 * time.Millisecond)
			queue.EvictOldest()
		}()

		require.NoError(t, manager.Offer(ctx, "late", Send{}))
		assert.Equal(t, []string{"x", "late"}, queue.snapshot())
	})
	t.Run("With blocking send option", func(t *testing.T) {
		queue := newSliceQueue(1)
		manager, err := NewManager[string](queue)
		require.NoError(t, err)
		queue.fill(1)

		err = manager.Offer(ctx, "blocked", Send{Blocking: true, Timeout: 20 * time.Millisecond})
		require.ErrorIs(t, err, gerrors.ErrBackpressureTimeout)
	})
	t.Run("With cancelled context", func(t *testing.T) {
		queue := newSliceQueue(1)
		manager, err := NewManager[string](queue, WithStrategy(Block))
		require.NoError(t, err)
		queue.fill(1)

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, manager.Offer(cancelCtx, "blocked", Send{}), context.Canceled)
	})
	t.Run("With high priority", func(t *testing.T) {
		queue := newSliceQueue(10)
		manager, err := NewManager[string](queue, WithThresholds(0.5, 0.9, 0.3))
		require.NoError(t, err)
		queue.fill(9)
		require.NoError(t, manager.Offer(ctx, "urgent", Send{HighPriority: true}))
		// still rejected when physically full
		require.ErrorIs(t, manager.Offer(ctx, "urgent", Send{HighPriority: true}), gerrors.ErrMailboxFull)
	})
	t.Run("With Custom handler", func(t *testing.T) {
		queue := newSliceQueue(2)
		handler := &countingHandler{accept: true, queue: queue}
		manager, err := NewManager[string](queue, WithStrategy(Custom), WithHandler(handler))
		require.NoError(t, err)
		queue.fill(2)

		require.NoError(t, manager.Offer(ctx, "new", Send{}))
		assert.Equal(t, 1, handler.makeRooms)
		assert.Equal(t, []string{"x", "new"}, queue.snapshot())

		handler.accept = false
		require.ErrorIs(t, manager.Offer(ctx, "refused", Send{}), gerrors.ErrMailboxFull)
		assert.Equal(t, 1, handler.makeRooms)
	})
	t.Run("With observer and history", func(t *testing.T) {
		queue := newSliceQueue(10)
		var events []Event
		manager, err := NewManager[string](queue,
			WithThresholds(0.5, 0.9, 0.3),
			WithHistorySize(2),
			WithObserver(func(event Event) { events = append(events, event) }))
		require.NoError(t, err)

		queue.resize(5)
		manager.Update()
		queue.resize(9)
		manager.Update()
		queue.resize(6)
		manager.Update()

		require.Len(t, events, 3)
		assert.Equal(t, Normal, events[0].From)
		assert.Equal(t, Warning, events[0].To)
		assert.InDelta(t, 0.5, events[0].FillRatio, 1e-9)
		assert.Equal(t, Critical, events[1].To)
		assert.Equal(t, Recovery, events[2].To)
		assert.False(t, events[2].Timestamp.IsZero())

		history := manager.History()
		require.Len(t, history, 2)
		assert.Equal(t, events[1:], history)
	})
	t.Run("With observer order matching history under concurrent updates", func(t *testing.T) {
		const (
			updaters = 8
			rounds   = 500
		)

		queue := newSliceQueue(10)
		var events []Event
		manager, err := NewManager[string](queue,
			WithHistorySize(updaters*rounds),
			WithObserver(func(event Event) { events = append(events, event) }))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := range updaters {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range rounds {
					queue.resize((i + j) % 11)
					manager.Update()
				}
			}()
		}
		wg.Wait()

		history := manager.History()
		require.NotEmpty(t, history)
		assert.Equal(t, history, events)
		for i := 1; i < len(events); i++ {
			assert.Equal(t, events[i-1].To, events[i].From)
		}
	})
	t.Run("With invalid configuration", func(t *testing.T) {
		queue := newSliceQueue(10)
		_, err := NewManager[string](queue, WithThresholds(0.9, 0.5, 0.95))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)

		_, err = NewManager[string](queue, WithStrategy(Custom))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)

		_, err = NewManager[string](queue, WithThresholds(0, 1, 0.3))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "Recovery", Recovery.String())
	assert.Equal(t, "Critical", Critical.String())
	assert.Equal(t, "DropOldest", DropOldest.String())
	assert.Equal(t, "Block", Block.String())
	assert.Empty(t, State(9).String())
}
