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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/kestrel/errors"
)

func newTestEnvelope(message any) *Envelope {
	return newEnvelope(context.Background(), message, nil)
}

// disposeUnderLoad disposes mailbox while producers keep offering and
// checks that a drain made right after Dispose returns every accepted
// message.
func disposeUnderLoad(t *testing.T, mailbox Mailbox) {
	t.Helper()
	const (
		producers = 8
		perProd   = 2000
	)

	accepted := atomic.NewInt64(0)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := range perProd {
				if !mailbox.Offer(newTestEnvelope(i)) {
					return
				}
				accepted.Inc()
			}
		}()
	}

	close(start)
	time.Sleep(100 * time.Microsecond)
	mailbox.Dispose()

	drained := 0
	for {
		_, count := mailbox.DrainInto(nil, 512)
		if count == 0 {
			break
		}
		drained += count
	}

	wg.Wait()
	assert.EqualValues(t, accepted.Load(), drained)
	assert.True(t, mailbox.IsEmpty())
	assert.False(t, mailbox.Offer(newTestEnvelope(0)))
}

func TestBoundedMailbox(t *testing.T) {
	t.Run("With capacity enforcement", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		assert.EqualValues(t, 2, mailbox.Capacity())
		assert.True(t, mailbox.IsEmpty())

		require.True(t, mailbox.Offer(newTestEnvelope(1)))
		require.True(t, mailbox.Offer(newTestEnvelope(2)))
		assert.False(t, mailbox.Offer(newTestEnvelope(3)))
		assert.EqualValues(t, 2, mailbox.Len())

		env, ok := mailbox.Poll(time.Millisecond)
		require.True(t, ok)
		assert.Equal(t, 1, env.Message())
		assert.True(t, mailbox.Offer(newTestEnvelope(3)))
	})
	t.Run("With capacity lower than one", func(t *testing.T) {
		mailbox := NewBoundedMailbox(0)
		assert.EqualValues(t, 1, mailbox.Capacity())
	})
	t.Run("With Poll timeout", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		start := time.Now()
		env, ok := mailbox.Poll(20 * time.Millisecond)
		assert.False(t, ok)
		assert.Nil(t, env)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
	t.Run("With Poll woken by a producer", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		go func() {
			time.Sleep(10 * time.Millisecond)
			mailbox.Offer(newTestEnvelope("hello"))
		}()

		env, ok := mailbox.Poll(time.Second)
		require.True(t, ok)
		assert.Equal(t, "hello", env.Message())
	})
	t.Run("With DrainInto", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		for i := range 5 {
			require.True(t, mailbox.Offer(newTestEnvelope(i)))
		}

		buf, count := mailbox.DrainInto(nil, 3)
		require.Equal(t, 3, count)
		for i, env := range buf {
			assert.Equal(t, i, env.Message())
		}

		buf, count = mailbox.DrainInto(buf[:0], 10)
		require.Equal(t, 2, count)
		assert.Equal(t, 3, buf[0].Message())
		assert.Equal(t, 4, buf[1].Message())
		assert.True(t, mailbox.IsEmpty())
	})
	t.Run("With PushFront", func(t *testing.T) {
		mailbox := NewBoundedMailbox(3)
		for _, msg := range []string{"c", "d", "e"} {
			require.True(t, mailbox.Offer(newTestEnvelope(msg)))
		}

		// re-insertions ignore the capacity
		mailbox.PushFront(newTestEnvelope("a"), newTestEnvelope("b"))
		assert.EqualValues(t, 5, mailbox.Len())

		buf, count := mailbox.DrainInto(nil, 10)
		require.Equal(t, 5, count)
		var got []any
		for _, env := range buf {
			got = append(got, env.Message())
		}
		assert.Equal(t, []any{"a", "b", "c", "d", "e"}, got)
	})
	t.Run("With EvictOldest", func(t *testing.T) {
		mailbox := NewBoundedMailbox(3)
		for _, msg := range []string{"a", "b", "c"} {
			require.True(t, mailbox.Offer(newTestEnvelope(msg)))
		}

		env, ok := mailbox.EvictOldest()
		require.True(t, ok)
		assert.Equal(t, "a", env.Message())
		assert.EqualValues(t, 2, mailbox.Len())
	})
	t.Run("With Put waiting for room", func(t *testing.T) {
		mailbox := NewBoundedMailbox(1)
		require.True(t, mailbox.Offer(newTestEnvelope(1)))

		done := make(chan error, 1)
		go func() {
			done <- mailbox.Put(context.Background(), newTestEnvelope(2))
		}()

		select {
		case <-done:
			t.Fatal("Put returned on a full mailbox")
		case <-time.After(20 * time.Millisecond):
		}

		_, ok := mailbox.Poll(time.Millisecond)
		require.True(t, ok)
		require.NoError(t, <-done)
		assert.EqualValues(t, 1, mailbox.Len())
	})
	t.Run("With Put and context deadline", func(t *testing.T) {
		mailbox := NewBoundedMailbox(1)
		require.True(t, mailbox.Offer(newTestEnvelope(1)))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := mailbox.Put(ctx, newTestEnvelope(2))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
	t.Run("With Dispose releasing producers", func(t *testing.T) {
		mailbox := NewBoundedMailbox(1)
		require.True(t, mailbox.Offer(newTestEnvelope(1)))

		done := make(chan error, 1)
		go func() {
			done <- mailbox.Put(context.Background(), newTestEnvelope(2))
		}()

		time.Sleep(10 * time.Millisecond)
		mailbox.Dispose()
		assert.ErrorIs(t, <-done, gerrors.ErrMailboxDisposed)
		assert.False(t, mailbox.Offer(newTestEnvelope(3)))

		// queued messages can still be drained
		buf, count := mailbox.DrainInto(nil, 10)
		require.Equal(t, 1, count)
		assert.Equal(t, 1, buf[0].Message())
	})
	t.Run("With Dispose racing producers", func(t *testing.T) {
		disposeUnderLoad(t, NewBoundedMailbox(16384))
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		const (
			producers = 8
			perProd   = 500
		)

		mailbox := NewBoundedMailbox(64)
		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perProd {
					assert.NoError(t, mailbox.Put(context.Background(), newTestEnvelope(&sequenced{producer: p, seq: i})))
				}
			}()
		}

		last := make(map[int]int)
		for p := range producers {
			last[p] = -1
		}

		received := 0
		for received < producers*perProd {
			env, ok := mailbox.Poll(time.Second)
			require.True(t, ok)
			msg := env.Message().(*sequenced)
			require.Greater(t, msg.seq, last[msg.producer])
			last[msg.producer] = msg.seq
			received++
		}

		wg.Wait()
		assert.True(t, mailbox.IsEmpty())
	})
}
