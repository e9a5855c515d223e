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
	"fmt"
	"time"

	"github.com/tochemey/kestrel/internal/validation"
)

const (
	// DefaultWarningThreshold is the fill ratio at which Warning starts
	DefaultWarningThreshold = 0.7
	// DefaultCriticalThreshold is the fill ratio at which Critical starts
	DefaultCriticalThreshold = 0.9
	// DefaultRecoveryThreshold is the fill ratio below which a mailbox
	// leaves Recovery
	DefaultRecoveryThreshold = 0.5
	// DefaultHistorySize is the number of transitions kept for diagnostics
	DefaultHistorySize = 64
)

type config struct {
	warning      float64
	critical     float64
	recovery     float64
	strategy     Strategy
	blockTimeout time.Duration
	handler      Handler
	observers    []Observer
	dropHandler  DropHandler
	historySize  int
}

func defaultConfig() *config {
	return &config{
		warning:     DefaultWarningThreshold,
		critical:    DefaultCriticalThreshold,
		recovery:    DefaultRecoveryThreshold,
		strategy:    DropNew,
		historySize: DefaultHistorySize,
	}
}

// Validate checks the thresholds and the strategy wiring
func (c *config) Validate() error {
	return validation.New(validation.AllErrors()).
		AddValidator(validation.NewRatioValidator("warning threshold", c.warning)).
		AddValidator(validation.NewRatioValidator("critical threshold", c.critical)).
		AddValidator(validation.NewRatioValidator("recovery threshold", c.recovery)).
		AddAssertion(c.warning < c.critical, fmt.Sprintf("warning threshold (%v) must be lower than critical threshold (%v)", c.warning, c.critical)).
		AddAssertion(c.recovery < c.critical, fmt.Sprintf("recovery threshold (%v) must be lower than critical threshold (%v)", c.recovery, c.critical)).
		AddAssertion(c.strategy != Custom || c.handler != nil, "custom strategy requires a handler").
		AddAssertion(c.blockTimeout >= 0, "block timeout must not be negative").
		AddAssertion(c.historySize >= 0, "history size must not be negative").
		Validate()
}

// Option configures a Manager
type Option func(*config)

// WithThresholds sets the warning, critical and recovery fill ratios.
// Each must lie in (0,1) with warning and recovery below critical.
func WithThresholds(warning, critical, recovery float64) Option {
	return func(c *config) {
		c.warning = warning
		c.critical = critical
		c.recovery = recovery
	}
}

// WithStrategy sets the strategy applied while Critical
func WithStrategy(strategy Strategy) Option {
	return func(c *config) {
		c.strategy = strategy
	}
}

// WithBlockTimeout bounds how long a blocked sender waits.
// Zero waits until the sender's context is done.
func WithBlockTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.blockTimeout = timeout
	}
}

// WithHandler sets the handler used by the Custom strategy
func WithHandler(handler Handler) Option {
	return func(c *config) {
		c.handler = handler
	}
}

// WithObserver registers a transition observer. It can be used several times.
// Observers are called one transition at a time, in History order.
func WithObserver(observer Observer) Option {
	return func(c *config) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithHistorySize sets how many transitions are retained
func WithHistorySize(size int) Option {
	return func(c *config) {
		c.historySize = size
	}
}

// WithDropHandler sets the callback receiving refused and evicted messages
func WithDropHandler(handler DropHandler) Option {
	return func(c *config) {
		c.dropHandler = handler
	}
}
