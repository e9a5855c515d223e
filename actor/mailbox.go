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
	"runtime"
	"time"

	"go.uber.org/atomic"
)

// Mailbox defines the contract for an actor's message queue.
//
// Concurrency and ordering
//   - Offer, Put and EvictOldest are safe for many concurrent producers.
//   - Poll, DrainInto and PushFront are called by the single consumer, the
//     actor's processing loop.
//   - Messages from one producer are taken in the order they were offered.
//     There is no fairness across producers, but the consumer always
//     observes one total order.
//
// Capacity
//   - A bounded mailbox rejects offers once Len reaches Capacity.
//   - An unbounded mailbox reports a Capacity of zero and never rejects.
//   - PushFront ignores the capacity: messages taken out and handed back by
//     the consumer must never be lost.
//
// Resource management
//   - Dispose releases blocked producers. Later offers fail and Put returns
//     ErrMailboxDisposed. It returns once the offers in progress are
//     published, so a drain after Dispose sees every accepted message.
type Mailbox interface {
	// Offer enqueues without blocking. It returns false only when the
	// mailbox is full or disposed.
	Offer(env *Envelope) bool
	// Put enqueues and waits for room until ctx is done.
	Put(ctx context.Context, env *Envelope) error
	// Poll takes the head of the mailbox, waiting up to timeout for one.
	Poll(timeout time.Duration) (*Envelope, bool)
	// DrainInto appends up to max queued messages to buf without blocking and
	// returns the grown slice with the number of appended messages.
	DrainInto(buf []*Envelope, max int) ([]*Envelope, int)
	// PushFront re-inserts messages at the head, keeping their relative order.
	PushFront(envs ...*Envelope)
	// EvictOldest removes the head of the mailbox.
	EvictOldest() (*Envelope, bool)
	// Len returns a snapshot of the number of queued messages.
	Len() int64
	// Capacity returns the mailbox capacity. Zero means unbounded.
	Capacity() int64
	// IsEmpty reports whether the mailbox has no queued message.
	IsEmpty() bool
	// Dispose releases the waiters of the mailbox. It can be called several
	// times.
	Dispose()
}

// poller implements the timed wait shared by the mailbox variants.
// take must not block. The timer is owned by the single consumer.
type poller struct {
	notEmpty chan struct{}
	timer    *time.Timer
}

func newPoller() *poller {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	return &poller{
		notEmpty: make(chan struct{}, 1),
		timer:    timer,
	}
}

// signal wakes the consumer when it is waiting in poll
func (p *poller) signal() {
	select {
	case p.notEmpty <- struct{}{}:
	default:
	}
}

func (p *poller) poll(timeout time.Duration, take func() (*Envelope, bool), done func() bool) (*Envelope, bool) {
	if env, ok := take(); ok {
		return env, true
	}

	if timeout <= 0 || done() {
		return nil, false
	}

	p.timer.Reset(timeout)
	defer p.timer.Stop()

	for {
		select {
		case <-p.notEmpty:
			if env, ok := take(); ok {
				return env, true
			}
			if done() {
				return nil, false
			}
		case <-p.timer.C:
			return take()
		}
	}
}

// awaitOffers spins until the offers counted by offering are done. Offers
// never wait on the consumer, so the wait is short.
func awaitOffers(offering *atomic.Int64) {
	for offering.Load() > 0 {
		runtime.Gosched()
	}
}
