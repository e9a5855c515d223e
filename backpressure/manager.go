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
	"errors"
	"sync"
	"time"

	gerrors "github.com/tochemey/kestrel/errors"
)

// maxEvictions bounds the evict-then-offer retries of DropOldest when other
// producers keep taking the freed slot.
const maxEvictions = 8

// Queue is the mailbox surface the manager gates
type Queue[T any] interface {
	// Offer enqueues without blocking. It returns false when the queue is full.
	Offer(msg T) bool
	// Put enqueues and waits for room until ctx is done
	Put(ctx context.Context, msg T) error
	// EvictOldest removes the head of the queue
	EvictOldest() (T, bool)
	// Len returns the number of queued messages
	Len() int64
	// Capacity returns the queue capacity. Zero or less means unbounded.
	Capacity() int64
}

// Send carries the per-send overrides of the gate
type Send struct {
	// HighPriority bypasses the gate entirely
	HighPriority bool
	// Blocking forces the Block strategy regardless of the configured one
	Blocking bool
	// Timeout bounds a blocking send. Zero falls back to the configured
	// block timeout.
	Timeout time.Duration
}

// Manager gates the offers made to a queue according to its fill ratio.
// The state machine is recomputed on every accepted offer and every time
// the consumer calls Update after taking messages.
type Manager[T any] struct {
	queue  Queue[T]
	config *config

	mu      sync.Mutex
	state   State
	history []Event

	// taken before mu is released so observers see the transitions in the
	// order History records them
	notifyMu sync.Mutex
}

// NewManager creates a Manager in front of queue
func NewManager[T any](queue Queue[T], opts ...Option) (*Manager[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, gerrors.NewErrInvalidConfig(err)
	}

	return &Manager[T]{
		queue:   queue,
		config:  cfg,
		state:   Normal,
		history: make([]Event, 0, cfg.historySize),
	}, nil
}

// Offer submits msg through the gate. It returns nil when the message is
// enqueued, ErrMailboxFull when it is refused and ErrBackpressureTimeout
// when a blocking send ran out of time. Rejections are never panics.
func (m *Manager[T]) Offer(ctx context.Context, msg T, send Send) error {
	if send.HighPriority {
		if m.queue.Offer(msg) {
			m.Update()
			return nil
		}
		return m.reject(msg, gerrors.ErrMailboxFull)
	}

	if send.Blocking {
		return m.block(ctx, msg, send.Timeout)
	}

	if m.queue.Capacity() <= 0 {
		// an unbounded queue only refuses once disposed
		if !m.queue.Offer(msg) {
			return m.reject(msg, gerrors.ErrMailboxDisposed)
		}
		return nil
	}

	if m.Update() != Critical {
		if m.queue.Offer(msg) {
			m.Update()
			return nil
		}
	}

	switch m.config.strategy {
	case Block:
		return m.block(ctx, msg, 0)
	case DropOldest:
		return m.dropOldest(msg)
	case Custom:
		return m.custom(msg)
	default:
		return m.reject(msg, gerrors.ErrMailboxFull)
	}
}

// Update recomputes the state from the current fill ratio and returns it.
// Observers are notified of a transition after the state has been recorded,
// one transition at a time. An observer must not call Update.
func (m *Manager[T]) Update() State {
	capacity := m.queue.Capacity()
	if capacity <= 0 {
		return Normal
	}

	ratio := float64(m.queue.Len()) / float64(capacity)

	m.mu.Lock()
	from := m.state
	to := m.next(from, ratio)
	if from == to {
		m.mu.Unlock()
		return to
	}

	m.state = to
	event := Event{
		From:      from,
		To:        to,
		FillRatio: ratio,
		Timestamp: time.Now(),
	}
	m.record(event)
	m.notifyMu.Lock()
	m.mu.Unlock()

	for _, observer := range m.config.observers {
		observer(event)
	}
	m.notifyMu.Unlock()
	return to
}

// State returns the current state
func (m *Manager[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FillRatio returns the current fill ratio. It is always zero for an
// unbounded queue.
func (m *Manager[T]) FillRatio() float64 {
	capacity := m.queue.Capacity()
	if capacity <= 0 {
		return 0
	}
	return float64(m.queue.Len()) / float64(capacity)
}

// History returns the retained transitions, oldest first
func (m *Manager[T]) History() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]Event, len(m.history))
	copy(history, m.history)
	return history
}

// Strategy returns the configured strategy
func (m *Manager[T]) Strategy() Strategy {
	return m.config.strategy
}

func (m *Manager[T]) next(from State, ratio float64) State {
	cfg := m.config
	switch from {
	case Critical, Recovery:
		if ratio >= cfg.critical {
			return Critical
		}
		if ratio <= cfg.recovery {
			return Normal
		}
		return Recovery
	default:
		if ratio >= cfg.critical {
			return Critical
		}
		if ratio >= cfg.warning {
			return Warning
		}
		return Normal
	}
}

// record must be called with mu held
func (m *Manager[T]) record(event Event) {
	size := m.config.historySize
	if size == 0 {
		return
	}

	if len(m.history) < size {
		m.history = append(m.history, event)
		return
	}

	copy(m.history, m.history[1:])
	m.history[len(m.history)-1] = event
}

func (m *Manager[T]) block(ctx context.Context, msg T, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = m.config.blockTimeout
	}

	putCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := m.queue.Put(putCtx, msg); err != nil {
		switch {
		case errors.Is(err, gerrors.ErrMailboxDisposed):
			return m.reject(msg, err)
		case ctx.Err() != nil:
			return m.reject(msg, ctx.Err())
		default:
			return m.reject(msg, gerrors.ErrBackpressureTimeout)
		}
	}

	m.Update()
	return nil
}

func (m *Manager[T]) dropOldest(msg T) error {
	for range maxEvictions {
		if evicted, ok := m.queue.EvictOldest(); ok {
			m.drop(evicted, gerrors.ErrMessageEvicted)
		}

		if m.queue.Offer(msg) {
			m.Update()
			return nil
		}
	}
	return m.reject(msg, gerrors.ErrMailboxFull)
}

func (m *Manager[T]) custom(msg T) error {
	handler := m.config.handler
	if !handler.ShouldAccept(msg) {
		return m.reject(msg, gerrors.ErrMailboxFull)
	}

	if m.queue.Offer(msg) {
		m.Update()
		return nil
	}

	if handler.MakeRoom() && m.queue.Offer(msg) {
		m.Update()
		return nil
	}
	return m.reject(msg, gerrors.ErrMailboxFull)
}

func (m *Manager[T]) reject(msg T, reason error) error {
	m.drop(msg, reason)
	return reason
}

func (m *Manager[T]) drop(msg T, reason error) {
	if m.config.dropHandler != nil {
		m.config.dropHandler(msg, reason)
	}
}
