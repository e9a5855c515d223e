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
	"sync/atomic"
	"time"

	uatomic "go.uber.org/atomic"

	gerrors "github.com/tochemey/kestrel/errors"
)

const segmentSize = 256

// segment is a fixed-size array of slots linked to its successor.
// Producers reserve slots with writeIdx; the consumer advances readIdx.
type segment struct {
	writeIdx atomic.Uint64
	readIdx  uint64
	next     atomic.Pointer[segment]
	slots    [segmentSize]atomic.Pointer[Envelope]
}

// UnboundedMailbox is an unbounded, lock-free MPSC mailbox storing messages
// in fixed-size array segments linked together.
//
// Characteristics
//   - Offer never blocks and never fails until the mailbox is disposed.
//   - Producers reserve a slot with a single atomic increment and publish
//     the message in it. A full segment is extended by whichever producer
//     wins the race to link the next one.
//   - Len counts a message from the moment its slot is reserved, so it never
//     goes below the number of messages the consumer can still take.
//
// There is no intrinsic backpressure: pair it with upstream throttling when
// the actor may fall behind.
type UnboundedMailbox struct {
	head  *segment
	_pad1 [64]byte
	tail  atomic.Pointer[segment]
	_pad2 [64]byte

	length   *uatomic.Int64
	disposed *uatomic.Bool
	offering *uatomic.Int64

	takeMu sync.Mutex
	front  []*Envelope

	poller *poller
}

// enforce compilation error
var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox creates an UnboundedMailbox
func NewUnboundedMailbox() *UnboundedMailbox {
	first := new(segment)
	m := &UnboundedMailbox{
		head:     first,
		length:   uatomic.NewInt64(0),
		disposed: uatomic.NewBool(false),
		offering: uatomic.NewInt64(0),
		poller:   newPoller(),
	}
	m.tail.Store(first)
	return m
}

// Offer enqueues env. It only fails once the mailbox is disposed.
func (m *UnboundedMailbox) Offer(env *Envelope) bool {
	m.offering.Inc()
	defer m.offering.Dec()
	if m.disposed.Load() {
		return false
	}

	for {
		tail := m.tail.Load()
		idx := tail.writeIdx.Add(1) - 1
		if idx < segmentSize {
			m.length.Inc()
			tail.slots[idx].Store(env)
			m.poller.signal()
			return true
		}

		next := tail.next.Load()
		if next == nil {
			fresh := new(segment)
			if tail.next.CompareAndSwap(nil, fresh) {
				m.tail.CompareAndSwap(tail, fresh)
			}
			continue
		}
		m.tail.CompareAndSwap(tail, next)
	}
}

// Put enqueues env. It never waits.
func (m *UnboundedMailbox) Put(_ context.Context, env *Envelope) error {
	if !m.Offer(env) {
		return gerrors.ErrMailboxDisposed
	}
	return nil
}

// Poll takes the head of the mailbox, waiting up to timeout.
func (m *UnboundedMailbox) Poll(timeout time.Duration) (*Envelope, bool) {
	return m.poller.poll(timeout, m.take, m.disposed.Load)
}

// DrainInto moves up to max queued messages into buf without blocking.
func (m *UnboundedMailbox) DrainInto(buf []*Envelope, max int) ([]*Envelope, int) {
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
func (m *UnboundedMailbox) PushFront(envs ...*Envelope) {
	if len(envs) == 0 {
		return
	}

	m.takeMu.Lock()
	front := make([]*Envelope, 0, len(envs)+len(m.front))
	front = append(front, envs...)
	m.front = append(front, m.front...)
	m.length.Add(int64(len(envs)))
	m.takeMu.Unlock()

	m.poller.signal()
}

// EvictOldest removes the head of the mailbox.
func (m *UnboundedMailbox) EvictOldest() (*Envelope, bool) {
	return m.take()
}

// Len returns the number of queued messages
func (m *UnboundedMailbox) Len() int64 {
	return m.length.Load()
}

// Capacity returns zero: the mailbox is unbounded
func (m *UnboundedMailbox) Capacity() int64 {
	return 0
}

// IsEmpty reports whether the mailbox has no queued message
func (m *UnboundedMailbox) IsEmpty() bool {
	return m.length.Load() == 0
}

// Dispose makes further offers fail and waits for the offers in progress.
// Queued messages stay available to DrainInto.
func (m *UnboundedMailbox) Dispose() {
	if m.disposed.CompareAndSwap(false, true) {
		m.poller.signal()
	}
	awaitOffers(m.offering)
}

func (m *UnboundedMailbox) take() (*Envelope, bool) {
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	return m.takeLocked()
}

// takeLocked must be called with takeMu held
func (m *UnboundedMailbox) takeLocked() (*Envelope, bool) {
	if len(m.front) > 0 {
		env := m.front[0]
		m.front[0] = nil
		m.front = m.front[1:]
		m.length.Dec()
		return env, true
	}

	seg := m.head
	for {
		written := min(seg.writeIdx.Load(), segmentSize)
		if seg.readIdx < written {
			env := seg.slots[seg.readIdx].Load()
			if env == nil {
				// reserved but not published yet
				return nil, false
			}
			seg.slots[seg.readIdx].Store(nil)
			seg.readIdx++
			m.length.Dec()
			return env, true
		}

		if written < segmentSize {
			return nil, false
		}

		next := seg.next.Load()
		if next == nil {
			return nil, false
		}
		m.head = next
		seg = next
	}
}
