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

package errors

import (
	"errors"
	"fmt"
)

// actor lifecycle
var (
	// ErrDead is returned when the actor behind a PID has stopped
	ErrDead = errors.New("actor is not alive")
	// ErrActorNotFound is returned when no live actor has the given id
	ErrActorNotFound = errors.New("actor not found")
	// ErrActorAlreadyExists is returned when a live actor already has the name
	ErrActorAlreadyExists = errors.New("actor already exists")
	// ErrUndefinedActor is returned for a nil actor or PID
	ErrUndefinedActor = errors.New("actor is not defined")
	// ErrInitFailure is returned when PreStart kept failing
	ErrInitFailure = errors.New("preStart failed")
	ErrNameRequired = errors.New("name is required")
)

// actor system
var (
	ErrActorSystemNotStarted     = errors.New("actor system is not running")
	ErrActorSystemAlreadyStarted = errors.New("actor system has already started")
	// ErrInvalidConfig is returned when an option is out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// messaging
var (
	// ErrRequestTimeout is returned when an Ask got no reply in time
	ErrRequestTimeout = errors.New("request timed out")
	// ErrInvalidTimeout is returned for a timeout lower than or equal to zero
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// mailbox and backpressure
var (
	// ErrMailboxFull is returned when the mailbox refused the message
	ErrMailboxFull = errors.New("mailbox is full")
	// ErrMessageEvicted is reported for a queued message dropped to make room
	// for a newer one
	ErrMessageEvicted = errors.New("message evicted from mailbox")
	// ErrMailboxDisposed is returned once the mailbox stopped taking messages
	ErrMailboxDisposed = errors.New("mailbox has been disposed")
	// ErrBackpressureTimeout is returned when a blocking send found no room in time
	ErrBackpressureTimeout = errors.New("backpressure: send timed out")
)

// scheduler
var (
	ErrSchedulerNotStarted = errors.New("scheduler has not started")
	// ErrScheduledReferenceNotFound is returned when cancelling an unknown schedule
	ErrScheduledReferenceNotFound = errors.New("scheduled reference not found")
)

// NewErrActorNotFound reports the missing actor id
func NewErrActorNotFound(id string) error {
	return fmt.Errorf("(actor=%s) %w", id, ErrActorNotFound)
}

// NewErrActorAlreadyExists reports the conflicting actor id
func NewErrActorAlreadyExists(id string) error {
	return fmt.Errorf("(actor=%s) %w", id, ErrActorAlreadyExists)
}

// NewErrInitFailure marks err as a startup failure
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrInvalidConfig marks the validation violations in err
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// cause carries the error a typed error was raised for
type cause struct {
	err error
}

func (c cause) Error() string {
	return c.err.Error()
}

func (c cause) Unwrap() error {
	return c.err
}

// PanicError is the failure of a message handler that panicked
type PanicError struct{ cause }

// NewPanicError creates a PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{cause{fmt.Errorf("panic: %w", err)}}
}

// InternalError is raised by the runtime itself rather than by user code
type InternalError struct{ cause }

// NewInternalError creates an InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{cause{fmt.Errorf("internal error: %w", err)}}
}

// SpawnError is returned when an actor could not be created
type SpawnError struct{ cause }

// NewSpawnError creates a SpawnError
func NewSpawnError(err error) *SpawnError {
	return &SpawnError{cause{fmt.Errorf("spawn error: %w", err)}}
}

var (
	_ error = (*PanicError)(nil)
	_ error = (*InternalError)(nil)
	_ error = (*SpawnError)(nil)
)
