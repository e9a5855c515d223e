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

package supervisor

import (
	"fmt"
	"sync"
	"time"
)

// Strategy is the failure-handling policy an actor is created with.
// The strategy alone decides the outcome of a failure: the same error yields
// different directives under different strategies.
type Strategy int

const (
	// RestartStrategy restarts the failing actor: the actor instance is
	// re-initialized while its mailbox and queued messages are preserved.
	RestartStrategy Strategy = iota
	// ResumeStrategy ignores the failure and carries on with the next message.
	ResumeStrategy
	// StopStrategy stops the failing actor. Remaining queued messages become
	// dead letters.
	StopStrategy
	// EscalateStrategy hands the failure to the parent, whose own strategy
	// decides what happens to the failing actor.
	EscalateStrategy
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case ResumeStrategy:
		return "Resume"
	case RestartStrategy:
		return "Restart"
	case StopStrategy:
		return "Stop"
	case EscalateStrategy:
		return "Escalate"
	default:
		return ""
	}
}

// Action is the kind of decision carried by a Directive
type Action int

const (
	// ContinueAction resumes processing with the next message
	ContinueAction Action = iota
	// RestartAction restarts the actor instance
	RestartAction
	// StopAction stops the actor
	StopAction
	// EscalateAction defers the decision to the parent
	EscalateAction
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ContinueAction:
		return "Continue"
	case RestartAction:
		return "Restart"
	case StopAction:
		return "Stop"
	case EscalateAction:
		return "Escalate"
	default:
		return ""
	}
}

// Directive is the decision taken for a single failure.
// Reprocess is only meaningful with RestartAction: it asks the runtime to
// deliver the failed message again to the restarted actor, ahead of any
// other queued message.
type Directive struct {
	Action    Action
	Reprocess bool
}

// Continue returns the continue directive
func Continue() Directive {
	return Directive{Action: ContinueAction}
}

// Restart returns the restart directive
func Restart(reprocess bool) Directive {
	return Directive{Action: RestartAction, Reprocess: reprocess}
}

// Stop returns the stop directive
func Stop() Directive {
	return Directive{Action: StopAction}
}

// Escalate returns the escalate directive
func Escalate() Directive {
	return Directive{Action: EscalateAction}
}

// String returns the string representation of the directive
func (d Directive) String() string {
	if d.Action == RestartAction {
		return fmt.Sprintf("Restart(reprocess=%t)", d.Reprocess)
	}
	return d.Action.String()
}

// ReprocessHook lets the failing handler state whether the failed message
// should be delivered again after a restart. A nil hook means false.
type ReprocessHook func(err error) bool

// Decide maps a strategy and a failure to a Directive. It is a pure function:
// the error is only handed to the hook, it never selects the outcome.
func Decide(strategy Strategy, err error, hook ReprocessHook) Directive {
	switch strategy {
	case ResumeStrategy:
		return Continue()
	case RestartStrategy:
		reprocess := false
		if hook != nil {
			reprocess = hook(err)
		}
		return Restart(reprocess)
	case EscalateStrategy:
		return Escalate()
	default:
		return Stop()
	}
}

// Resolve settles an escalated directive against the strategies of the
// ancestors, nearest first. The first ancestor whose strategy does not
// escalate decides. When every ancestor escalates, or there is none, the
// failing actor is stopped. Reprocess carries the failing handler's own hint.
func Resolve(directive Directive, ancestors ...Strategy) Directive {
	if directive.Action != EscalateAction {
		return directive
	}

	for _, strategy := range ancestors {
		switch strategy {
		case EscalateStrategy:
			continue
		case RestartStrategy:
			return Restart(directive.Reprocess)
		default:
			return Decide(strategy, nil, nil)
		}
	}
	return Stop()
}

// Option defines the various options to apply to a given Supervisor
type Option func(*Supervisor)

// WithStrategy sets the supervisor strategy
func WithStrategy(strategy Strategy) Option {
	return func(s *Supervisor) {
		s.strategy = strategy
	}
}

// WithRetry bounds the restarts of an actor: more than maxRetries restarts
// within window turn the next restart into a stop. A zero maxRetries disables
// the bound.
func WithRetry(maxRetries uint32, window time.Duration) Option {
	return func(s *Supervisor) {
		s.maxRetries = maxRetries
		s.window = window
	}
}

// WithMaxReprocess sets how many times a single failed message can be
// redelivered after restarts. Once exhausted the message is dropped to dead
// letters and the restarted actor moves on.
func WithMaxReprocess(max uint32) Option {
	return func(s *Supervisor) {
		s.maxReprocess = max
	}
}

// Supervisor carries the supervision configuration of one actor.
// It is immutable once created.
//
// Defaults:
//   - Strategy: RestartStrategy.
//   - Retries: unbounded.
//   - Reprocess attempts: DefaultMaxReprocess.
type Supervisor struct {
	strategy     Strategy
	maxRetries   uint32
	window       time.Duration
	maxReprocess uint32
}

// DefaultMaxReprocess is the default redelivery bound of a failed message
const DefaultMaxReprocess = 3

// NewSupervisor creates an instance of Supervisor
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		strategy:     RestartStrategy,
		window:       -1,
		maxReprocess: DefaultMaxReprocess,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy returns the configured supervision strategy.
func (s *Supervisor) Strategy() Strategy {
	return s.strategy
}

// MaxRetries returns the restart budget
func (s *Supervisor) MaxRetries() uint32 {
	return s.maxRetries
}

// Window returns the time range of the restart budget
func (s *Supervisor) Window() time.Duration {
	return s.window
}

// MaxReprocess returns the redelivery bound of a failed message
func (s *Supervisor) MaxReprocess() uint32 {
	return s.maxReprocess
}

// Decide maps err to a directive using the configured strategy
func (s *Supervisor) Decide(err error, hook ReprocessHook) Directive {
	return Decide(s.strategy, err, hook)
}

// NewBudget creates the restart budget tracker matching this supervisor
func (s *Supervisor) NewBudget() *Budget {
	return &Budget{maxRetries: s.maxRetries, window: s.window}
}

// Budget tracks the restarts of one actor against the supervisor's retry
// bound.
type Budget struct {
	mu         sync.Mutex
	maxRetries uint32
	window     time.Duration
	restarts   []time.Time
}

// Allow records a restart at now and reports whether it stays within budget.
func (b *Budget) Allow(now time.Time) bool {
	if b.maxRetries == 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.window > 0 {
		cutoff := now.Add(-b.window)
		kept := b.restarts[:0]
		for _, at := range b.restarts {
			if at.After(cutoff) {
				kept = append(kept, at)
			}
		}
		b.restarts = kept
	}

	if uint32(len(b.restarts)) >= b.maxRetries {
		return false
	}
	b.restarts = append(b.restarts, now)
	return true
}
