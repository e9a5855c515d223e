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
	"time"

	gods "github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/kestrel/errors"
)

// BoundedMailbox is a bounded MPSC mailbox backed by a lock-free ring buffer.
//
// Characteristics
//   - Exact capacity: a producer reserves a slot on an atomic counter before
//     touching the ring, so Len never exceeds Capacity through Offer or Put.
//   - Producers never take the consumer lock. The consumer lock only
//     serializes takes, front re-insertions and evictions.
//   - Put is a true blocking enqueue: the caller sleeps until the consumer
//     frees a slot, the context is done or the mailbox is disposed.
//   - Once Dispose returns every accepted message can be drained.
//
// Use this mailbox together with a backpressure strategy when producers may
// outpace the actor.
type BoundedMailbox struct {
	ring     *gods.RingBuffer
	capacity int64
	// size counts reserved ring slots plus front messages
	size     *atomic.Int64
	disposed *atomic.Bool
	// offers in progress, awaited by Dispose
	offering *atomic.Int64

	takeMu sync.Mutex
	front  []*Envelope

	poller *poller

	waiters *atomic.Int64
	spaceMu sync.Mutex
	space   chan struct{}
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a bounded mailbox. A capacity lower than one is
// raised to one.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	if capacity < 1 {
		capacity = 1
	}

	return &BoundedMailbox{
		ring:     gods.NewRingBuffer(uint64(capacity)),
		capacity: int64(capacity),
		size:     atomic.NewInt64(0),
		disposed: atomic.NewBool(false),
		offering: atomic.NewInt64(0),
		poller:   newPoller(),
		waiters:  atomic.NewInt64(0),
		space:    make(chan struct{}),
	}
}

// Offer enqueues env when a slot is free.
func (m *BoundedMailbox) Offer(env *Envelope) bool {
	m.offering.Inc()
	defer m.offering.Dec()
	if m.disposed.Load() {
		return false
	}

	for {
		current := m.size.Load()
		if current >= m.capacity {
			return false
		}
		if m.size.CompareAndSwap(current, current+1) {
			break
		}
	}

	// the reservation guarantees the ring has a free slot, so Put only
	// retries on producer contention and never waits for the consumer
	if err := m.ring.Put(env); err != nil {
		m.size.Dec()
		return false
	}

	m.poller.signal()
	return true
}

// Put enqueues env, waiting for a free slot until ctx is done.
func (m *BoundedMailbox) Put(ctx context.Context, env *Envelope) error {
	m.waiters.Inc()
	defer m.waiters.Dec()

	for {
		if m.disposed.Load() {
			return gerrors.ErrMailboxDisposed
		}

		// grab the wake-up channel before trying so a slot freed in between
		// is never missed
		wait := m.spaceSignal()
		if m.Offer(env) {
			return nil
		}

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Poll takes the head of the mailbox, waiting up to timeout.
func (m *BoundedMailbox) Poll(timeout time.Duration) (*Envelope, bool) {
	return m.poller.poll(timeout, m.take, m.disposed.Load)
}

// DrainInto moves up to max queued messages into buf without blocking.
func (m *BoundedMailbox) DrainInto(buf []*Envelope, max int) ([]*Envelope, int) {
	m.takeMu.Lock()
	defer m.takeMu.Unlock()

	count := 0
	for count < max {
		env, ok := m.takeLocked()
		if !ok {
			break
		}
		buf = append(buf, env)
		count++
	}
	return buf, count
}

// PushFront re-inserts envs at the head of the mailbox.
func (m *BoundedMailbox) PushFront(envs ...*Envelope) {
	if len(envs) == 0 {
		return
	}

	m.takeMu.Lock()
	front := make([]*Envelope, 0, len(envs)+len(m.front))
	front = append(front, envs...)
	m.front = append(front, m.front...)
	m.size.Add(int64(len(envs)))
	m.takeMu.Unlock()

	m.poller.signal()
}

// EvictOldest removes the head of the mailbox.
func (m *BoundedMailbox) EvictOldest() (*Envelope, bool) {
	return m.take()
}

// Len returns the number of queued messages
func (m *BoundedMailbox) Len() int64 {
	return m.size.Load()
}

// Capacity returns the mailbox capacity
func (m *BoundedMailbox) Capacity() int64 {
	return m.capacity
}

// IsEmpty reports whether the mailbox has no queued message
func (m *BoundedMailbox) IsEmpty() bool {
	return m.size.Load() == 0
}

// Dispose releases blocked producers and waits for the offers in progress.
// Queued messages stay available to DrainInto.
func (m *BoundedMailbox) Dispose() {
	if m.disposed.CompareAndSwap(false, true) {
		m.broadcastSpace()
		m.poller.signal()
	}
	awaitOffers(m.offering)
}

func (m *BoundedMailbox) take() (*Envelope, bool) {
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	return m.takeLocked()
}

// takeLocked must be called with takeMu held
func (m *BoundedMailbox) takeLocked() (*Envelope, bool) {
	if len(m.front) > 0 {
		env := m.front[0]
		m.front[0] = nil
		m.front = m.front[1:]
		m.release()
		return env, true
	}

	// Len counts claimed slots; Get only spins until an in-flight producer
	// publishes its message
	if m.ring.Len() == 0 {
		return nil, false
	}

	item, err := m.ring.Get()
	if err != nil {
		return nil, false
	}

	m.release()
	env, _ := item.(*Envelope)
	return env, env != nil
}

func (m *BoundedMailbox) release() {
	m.size.Dec()
	if m.waiters.Load() > 0 {
		m.broadcastSpace()
	}
}

func (m *BoundedMailbox) spaceSignal() <-chan struct{} {
	m.spaceMu.Lock()
	defer m.spaceMu.Unlock()
	return m.space
}

func (m *BoundedMailbox) broadcastSpace() {
	m.spaceMu.Lock()
	close(m.space)
	m.space = make(chan struct{})
	m.spaceMu.Unlock()
}
