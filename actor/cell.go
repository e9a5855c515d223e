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
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/kestrel/backpressure"
	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/internal/chain"
	"github.com/tochemey/kestrel/log"
	"github.com/tochemey/kestrel/supervisor"
)

type cellState int32

const (
	runningState cellState = iota
	processingState
	restartingState
	escalatingState
	stoppingState
	stoppedState
)

// String returns the string representation of the state
func (s cellState) String() string {
	switch s {
	case runningState:
		return "Running"
	case processingState:
		return "Processing"
	case restartingState:
		return "Restarting"
	case escalatingState:
		return "Escalating"
	case stoppingState:
		return "Stopping"
	case stoppedState:
		return "Stopped"
	default:
		return ""
	}
}

// cell is the runtime side of an actor: it owns the mailbox, the
// backpressure gate, the supervision settings and the goroutine that
// processes the mailbox.
//
// Only one goroutine at a time runs the processing loop of a cell. Restarts
// and resumes hand the cell over to a fresh goroutine once the previous one
// has unwound its batch.
type cell struct {
	id     string
	uid    string
	pid    *PID
	system *ActorSystem
	actor  Actor
	parent *cell
	logger log.Logger

	children mapset.Set[*cell]

	mailbox      Mailbox
	backpressure *backpressure.Manager[*Envelope]

	supervisor *supervisor.Supervisor
	budget     *supervisor.Budget

	batchSize      int
	pollTimeout    time.Duration
	initMaxRetries int
	initTimeout    time.Duration

	state         *atomic.Int32
	stopRequested *atomic.Bool
	terminated    chan struct{}
	startedAt     *atomic.Time
	// postStopped is only touched by the goroutine owning the cell
	postStopped bool

	processedCount *atomic.Uint64
	failureCount   *atomic.Uint64
	restartCount   *atomic.Uint64
	metricAttrs    metric.MeasurementOption
}

// newCell creates a cell. The cell does not process messages before start
// is called.
func newCell(system *ActorSystem, parent *cell, name string, actor Actor, config *spawnConfig) (*cell, error) {
	id := "/" + name
	if parent != nil {
		id = parent.id + "/" + name
	}

	c := &cell{
		id:             id,
		uid:            uuid.NewString(),
		system:         system,
		actor:          actor,
		parent:         parent,
		logger:         system.logger,
		children:       mapset.NewSet[*cell](),
		mailbox:        config.newMailbox(),
		supervisor:     config.supervisor,
		budget:         config.supervisor.NewBudget(),
		batchSize:      config.batchSize,
		pollTimeout:    config.pollTimeout,
		initMaxRetries: config.initMaxRetries,
		initTimeout:    config.initTimeout,
		state:          atomic.NewInt32(int32(stoppedState)),
		stopRequested:  atomic.NewBool(false),
		terminated:     make(chan struct{}),
		startedAt:      atomic.NewTime(time.Time{}),
		processedCount: atomic.NewUint64(0),
		failureCount:   atomic.NewUint64(0),
		restartCount:   atomic.NewUint64(0),
		metricAttrs: metric.WithAttributes(
			attribute.String("actor.system", system.name),
			attribute.String("actor.id", id),
		),
	}
	c.pid = newPID(id, c.uid, system)

	// dropped messages always end up as dead letters
	opts := append([]backpressure.Option{}, config.backpressure...)
	opts = append(opts,
		backpressure.WithObserver(c.onTransition),
		backpressure.WithDropHandler(c.onDrop))

	manager, err := backpressure.NewManager[*Envelope](c.mailbox, opts...)
	if err != nil {
		return nil, err
	}

	c.backpressure = manager
	return c, nil
}

// init runs PreStart with retries
func (c *cell) init(ctx context.Context) error {
	c.logger.Debugf("Initialization process started for Actor %s ...", c.id)

	cctx, cancel := context.WithTimeout(ctx, c.initTimeout)
	defer cancel()

	retrier := retry.NewRetrier(c.initMaxRetries, time.Millisecond, c.initTimeout)
	if err := retrier.RunContext(cctx, func(ctx context.Context) error {
		return c.actor.PreStart(ctx)
	}); err != nil {
		c.logger.Errorf("Failed to initialize Actor %s: %v", c.id, err)
		return gerrors.NewErrInitFailure(err)
	}

	c.postStopped = false
	c.startedAt.Store(time.Now())
	c.logger.Debugf("Actor %s initialization is successful.", c.id)
	return nil
}

// start hands the cell to a new processing goroutine
func (c *cell) start() {
	c.state.Store(int32(runningState))
	go c.run()
}

// send submits a message through the backpressure gate
func (c *cell) send(ctx context.Context, env *Envelope, config *sendConfig) error {
	if !c.isAlive() {
		return gerrors.ErrDead
	}
	return c.backpressure.Offer(ctx, env, config.backpressure())
}

func (c *cell) isAlive() bool {
	return !c.stopRequested.Load()
}

// requestStop asks the processing loop to stop without waiting for it.
// Once it returns no send can reach the mailbox any more.
func (c *cell) requestStop() {
	c.stopRequested.Store(true)
	c.mailbox.Dispose()
}

// stop requests the cell to stop and waits until it has terminated
func (c *cell) stop(ctx context.Context) error {
	c.requestStop()
	select {
	case <-c.terminated:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("actor %s did not stop in time: %w", c.id, ctx.Err())
	}
}

// restart re-initializes the actor in place and starts a new processing
// goroutine. The actor stops when it ran out of restarts or cannot be
// initialized again.
func (c *cell) restart(p pending) {
	if !c.reinitialize(context.Background(), p) {
		c.shutdown(context.Background(), p)
		return
	}
	c.start()
}

// reinitialize runs the restart sequence: PostStop, PreStart, then the
// messages to deliver first are put back at the head of the mailbox.
// The mailbox and its content are preserved.
func (c *cell) reinitialize(ctx context.Context, p pending) bool {
	if !c.budget.Allow(time.Now()) {
		c.logger.Warnf("Actor %s exceeded its restart budget (%d)", c.id, c.supervisor.MaxRetries())
		return false
	}

	c.state.Store(int32(restartingState))
	c.logger.Infof("Restarting Actor %s after: %v", c.id, p.err)

	if err := c.actor.PostStop(ctx); err != nil {
		c.logger.Warnf("Actor %s PostStop failed during restart: %v", c.id, err)
	}
	c.postStopped = true

	if err := c.init(ctx); err != nil {
		return false
	}

	front := c.recoverMessages(ctx)
	if failed := p.failed; failed != nil && p.directive.Reprocess {
		if failed.attempts < c.supervisor.MaxReprocess() {
			failed.attempts++
			front = append(front, failed)
		} else {
			c.logger.Warnf("Actor %s gave up redelivering %T after %d attempts", c.id, failed.message, failed.attempts)
			c.toDeadletter(failed, fmt.Errorf("redelivery limit reached: %w", p.err))
		}
	}
	c.mailbox.PushFront(front...)
	c.backpressure.Update()

	c.restartCount.Inc()
	c.system.recordRestart(c)
	c.system.publish(&ActorRestarted{
		Actor:       c.id,
		RestartedAt: time.Now(),
		Reason:      errorString(p.err),
	})
	return true
}

// recoverMessages returns the messages a RecoveryProvider wants replayed
func (c *cell) recoverMessages(ctx context.Context) []*Envelope {
	provider, ok := c.actor.(RecoveryProvider)
	if !ok {
		return nil
	}

	messages, err := provider.Recover(ctx)
	if err != nil {
		c.logger.Errorf("Actor %s failed to recover its messages: %v", c.id, err)
		return nil
	}

	envelopes := make([]*Envelope, 0, len(messages))
	for _, message := range messages {
		envelopes = append(envelopes, newEnvelope(ctx, message, nil))
	}
	return envelopes
}

// escalate resolves the failure against the strategies of the ancestors,
// nearest first, and applies the outcome to this actor. The ancestors
// themselves are left untouched.
func (c *cell) escalate(p pending) {
	c.state.Store(int32(escalatingState))

	directive := supervisor.Resolve(p.directive, c.ancestorStrategies()...)
	c.logger.Warnf("Actor %s escalated %v, resolved as %s", c.id, p.err, directive)
	c.system.publish(&ActorEscalated{
		Actor:       c.id,
		EscalatedAt: time.Now(),
		Reason:      errorString(p.err),
	})

	p.directive = directive
	c.apply(p)
}

func (c *cell) ancestorStrategies() []supervisor.Strategy {
	var strategies []supervisor.Strategy
	for ancestor := c.parent; ancestor != nil; ancestor = ancestor.parent {
		strategies = append(strategies, ancestor.supervisor.Strategy())
	}
	return strategies
}

// shutdown stops the children, runs PostStop, turns the remaining messages
// into dead letters and removes the actor from the system.
func (c *cell) shutdown(ctx context.Context, p pending) {
	c.state.Store(int32(stoppingState))
	c.requestStop()
	c.logger.Debugf("Shutdown process has started for Actor %s...", c.id)

	ctx, cancel := context.WithTimeout(ctx, c.system.shutdownTimeout)
	defer cancel()

	if err := chain.New(chain.WithContext(ctx)).
		AddContextRunner(c.stopChildren).
		AddContextRunnerIf(!c.postStopped, c.actor.PostStop).
		Run(); err != nil {
		c.logger.Errorf("Actor %s shutdown failed: %v", c.id, err)
	}
	c.postStopped = true

	if p.failed != nil && p.failed.reply != nil {
		p.failed.reply.Failure(gerrors.ErrDead)
	}
	c.discard()

	c.system.unregister(c)
	if c.parent != nil {
		c.parent.children.Remove(c)
	}

	c.state.Store(int32(stoppedState))
	c.system.publish(&ActorStopped{Actor: c.id, StoppedAt: time.Now()})
	c.logger.Debugf("Shutdown process completed for Actor %s...", c.id)
	close(c.terminated)
}

// stopChildren stops the children concurrently and waits for them
func (c *cell) stopChildren(ctx context.Context) error {
	children := c.children.ToSlice()
	if len(children) == 0 {
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, child := range children {
		eg.Go(func() error {
			return child.stop(ctx)
		})
	}
	return eg.Wait()
}

// discard turns every queued message into a dead letter
func (c *cell) discard() {
	buf := make([]*Envelope, 0, c.batchSize)
	for {
		var count int
		buf, count = c.mailbox.DrainInto(buf[:0], c.batchSize)
		if count == 0 {
			return
		}

		for _, env := range buf {
			if env.reply != nil {
				env.reply.Failure(gerrors.ErrDead)
			}
			c.toDeadletter(env, gerrors.ErrDead)
		}
		clear(buf)
	}
}

// onDrop receives the messages refused or evicted by the backpressure gate
func (c *cell) onDrop(msg any, reason error) {
	env, ok := msg.(*Envelope)
	if !ok {
		return
	}

	if env.reply != nil && errors.Is(reason, gerrors.ErrMessageEvicted) {
		env.reply.Failure(reason)
	}
	c.toDeadletter(env, reason)
}

// onTransition publishes the backpressure transitions of the mailbox
func (c *cell) onTransition(event backpressure.Event) {
	if event.To == backpressure.Critical {
		c.logger.Warnf("Actor %s mailbox is critical (fill ratio=%.2f)", c.id, event.FillRatio)
	}

	c.system.recordTransition(c)
	c.system.publish(&BackpressureChanged{
		Actor:     c.id,
		From:      event.From,
		To:        event.To,
		FillRatio: event.FillRatio,
		ChangedAt: event.Timestamp,
	})
}

func (c *cell) toDeadletter(env *Envelope, reason error) {
	c.system.deadletter(c, env, reason)
}

func (c *cell) recordProcessed(*Envelope) {
	c.processedCount.Inc()
	c.system.recordProcessed(c)
}

func (c *cell) recordFailure(error) {
	c.failureCount.Inc()
	c.system.recordFailure(c)
}

func (c *cell) childrenPIDs() []*PID {
	children := c.children.ToSlice()
	pids := make([]*PID, 0, len(children))
	for _, child := range children {
		pids = append(pids, child.pid)
	}
	return pids
}

func (c *cell) metric() *ActorMetric {
	var uptime time.Duration
	if startedAt := c.startedAt.Load(); !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}

	return &ActorMetric{
		processedCount:    c.processedCount.Load(),
		failureCount:      c.failureCount.Load(),
		restartCount:      c.restartCount.Load(),
		childrenCount:     uint64(c.children.Cardinality()),
		mailboxSize:       c.mailbox.Len(),
		backpressureState: c.backpressure.State(),
		uptime:            uptime,
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
