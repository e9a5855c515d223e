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

import "time"

// State is the flow-control state of a mailbox
type State int32

const (
	// Normal means the mailbox accepts messages freely
	Normal State = iota
	// Warning means the mailbox is filling up. Messages are still accepted.
	Warning
	// Critical means the mailbox is close to full and the configured
	// Strategy applies to every new message.
	Critical
	// Recovery means the mailbox left Critical but has not drained below the
	// recovery threshold yet.
	Recovery
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Warning:
		return "Warning"
	case Critical:
		return "Critical"
	case Recovery:
		return "Recovery"
	default:
		return ""
	}
}

// Strategy defines how a new message is handled while the mailbox is Critical
type Strategy int

const (
	// DropNew rejects the incoming message and keeps the queued ones
	DropNew Strategy = iota
	// DropOldest evicts the head of the mailbox then accepts the new message
	DropOldest
	// Block suspends the sender until room frees up or the block timeout
	// elapses
	Block
	// Custom delegates the decision to a Handler
	Custom
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case DropNew:
		return "DropNew"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	case Custom:
		return "Custom"
	default:
		return ""
	}
}

// Event records a state transition
type Event struct {
	From      State
	To        State
	FillRatio float64
	Timestamp time.Time
}

// Observer is notified synchronously of every state transition.
// It must not block.
type Observer func(event Event)

// Handler drives the Custom strategy
type Handler interface {
	// ShouldAccept tells whether the message may enter the mailbox at all
	ShouldAccept(msg any) bool
	// MakeRoom frees space in the mailbox. It returns false when nothing
	// could be freed.
	MakeRoom() bool
}

// DropHandler is called with every message the manager refuses or evicts,
// together with the reason.
type DropHandler func(msg any, reason error)
