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
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/eventstream"
	"github.com/tochemey/kestrel/internal/metric"
	"github.com/tochemey/kestrel/internal/validation"
	"github.com/tochemey/kestrel/internal/xsync"
	"github.com/tochemey/kestrel/log"
	"github.com/tochemey/kestrel/supervisor"
)

// ActorSystem hosts a tree of actors.
//
// It owns the registry PIDs resolve through, the event stream lifecycle
// events are published on, and the messages scheduler. Top-level actors are
// created with Spawn, their children with ReceiveContext.Spawn.
type ActorSystem struct {
	name                   string
	logger                 log.Logger
	shutdownTimeout        time.Duration
	defaultSupervisor      *supervisor.Supervisor
	defaultMailboxCapacity int
	meterProvider          otelmetric.MeterProvider

	registry    *xsync.ShardedMap[*cell]
	eventStream *eventstream.EventsStream
	scheduler   *atomic.Pointer[scheduler]

	// serializes Start and Stop
	mu               sync.Mutex
	started          *atomic.Bool
	startedAt        *atomic.Time
	actorsCount      *atomic.Int64
	deadlettersCount *atomic.Int64

	meter              otelmetric.Meter
	metrics            *metric.ActorSystemMetric
	metricRegistration otelmetric.Registration
}

// NewActorSystem creates an actor system. Call Start before spawning
// actors.
func NewActorSystem(name string, opts ...Option) (*ActorSystem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, gerrors.ErrNameRequired
	}

	system := &ActorSystem{
		name:              name,
		logger:            log.DefaultLogger,
		shutdownTimeout:   DefaultShutdownTimeout,
		defaultSupervisor: supervisor.NewSupervisor(),
		registry:          xsync.NewShardedMap[*cell](),
		eventStream:       eventstream.New(),
		started:           atomic.NewBool(false),
		startedAt:         atomic.NewTime(time.Time{}),
		actorsCount:       atomic.NewInt64(0),
		deadlettersCount:  atomic.NewInt64(0),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if err := validation.New(validation.AllErrors()).
		AddValidator(validation.NewPathSegmentValidator("actor system name", name)).
		AddAssertion(system.logger != nil, "logger is required").
		AddAssertion(system.shutdownTimeout > 0, "shutdown timeout must be positive").
		AddAssertion(system.defaultSupervisor != nil, "default supervisor is required").
		AddAssertion(system.defaultMailboxCapacity >= 0, "default mailbox capacity must not be negative").
		Validate(); err != nil {
		return nil, gerrors.NewErrInvalidConfig(err)
	}

	meter := metric.Meter(system.meterProvider)
	metrics, err := metric.NewActorSystemMetric(meter)
	if err != nil {
		return nil, gerrors.NewInternalError(err)
	}

	system.meter = meter
	system.metrics = metrics
	system.scheduler = atomic.NewPointer(newScheduler(system.logger, system.shutdownTimeout))
	return system, nil
}

// Start starts the actor system
func (x *ActorSystem) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.started.Load() {
		return gerrors.ErrActorSystemAlreadyStarted
	}

	x.logger.Infof("Starting Actor System (%s) on %s/%s..", x.name, runtime.GOOS, runtime.GOARCH)

	registration, err := x.meter.RegisterCallback(x.observeMailboxes, x.metrics.MailboxSize())
	if err != nil {
		return gerrors.NewInternalError(fmt.Errorf("failed to register mailbox size callback: %w", err))
	}

	x.metricRegistration = registration
	x.scheduler.Load().Start(context.WithoutCancel(ctx))
	x.startedAt.Store(time.Now())
	x.started.Store(true)

	x.logger.Infof("Actor System (%s) started.", x.name)
	return nil
}

// Stop stops every actor, children first, then the scheduler. The messages
// left in the mailboxes become dead letters.
func (x *ActorSystem) Stop(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrActorSystemNotStarted
	}

	x.logger.Infof("Stopping Actor System (%s)...", x.name)
	x.started.Store(false)

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, c := range x.registry.Values() {
		if c.parent != nil {
			continue
		}
		eg.Go(func() error {
			return c.stop(egCtx)
		})
	}

	err := eg.Wait()
	// a stopped quartz scheduler cannot be started again
	x.scheduler.Swap(newScheduler(x.logger, x.shutdownTimeout)).Stop(ctx)
	if x.metricRegistration != nil {
		err = multierr.Append(err, x.metricRegistration.Unregister())
		x.metricRegistration = nil
	}

	x.eventStream.Close()
	x.registry.Reset()
	x.actorsCount.Store(0)
	x.startedAt.Store(time.Time{})

	if err != nil {
		x.logger.Errorf("Actor System (%s) stopped with errors: %v", x.name, err)
		return err
	}

	x.logger.Infof("Actor System (%s) stopped.", x.name)
	return nil
}

// Spawn creates a top-level actor
func (x *ActorSystem) Spawn(ctx context.Context, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	return x.spawn(ctx, nil, name, actor, opts...)
}

// Kill stops the given actor and its children, and waits for them to
// terminate
func (x *ActorSystem) Kill(ctx context.Context, pid *PID) error {
	if !x.Running() {
		return gerrors.ErrActorSystemNotStarted
	}

	c, err := pid.resolve()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()
	return c.stop(ctx)
}

// ResolvePID returns the PID of the live actor with the given path
func (x *ActorSystem) ResolvePID(id string) (*PID, error) {
	if !x.Running() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	c, ok := x.registry.Load(id)
	if !ok {
		return nil, gerrors.NewErrActorNotFound(id)
	}
	return c.pid, nil
}

// Actors returns the PIDs of the live actors
func (x *ActorSystem) Actors() []*PID {
	cells := x.registry.Values()
	pids := make([]*PID, 0, len(cells))
	for _, c := range cells {
		pids = append(pids, c.pid)
	}
	return pids
}

// Subscribe creates a subscriber receiving the lifecycle, backpressure and
// dead letter events of the actor system
func (x *ActorSystem) Subscribe() (eventstream.Subscriber, error) {
	if !x.Running() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	subscriber := x.eventStream.AddSubscriber()
	x.eventStream.Subscribe(subscriber, eventsTopic)
	return subscriber, nil
}

// Unsubscribe removes a subscriber created by Subscribe
func (x *ActorSystem) Unsubscribe(subscriber eventstream.Subscriber) error {
	if !x.Running() {
		return gerrors.ErrActorSystemNotStarted
	}

	x.eventStream.Unsubscribe(subscriber, eventsTopic)
	x.eventStream.RemoveSubscriber(subscriber)
	return nil
}

// ScheduleOnce sends message to pid once after delay
func (x *ActorSystem) ScheduleOnce(_ context.Context, message any, pid *PID, delay time.Duration, opts ...ScheduleOption) error {
	return x.scheduler.Load().ScheduleOnce(message, pid, delay, opts...)
}

// Schedule sends message to pid every interval until the schedule is
// cancelled or the actor system stops
func (x *ActorSystem) Schedule(_ context.Context, message any, pid *PID, interval time.Duration, opts ...ScheduleOption) error {
	return x.scheduler.Load().Schedule(message, pid, interval, opts...)
}

// ScheduleWithCron sends message to pid following the cron expression
func (x *ActorSystem) ScheduleWithCron(_ context.Context, message any, pid *PID, cronExpression string, opts ...ScheduleOption) error {
	return x.scheduler.Load().ScheduleWithCron(message, pid, cronExpression, opts...)
}

// CancelSchedule cancels the scheduled message with the given reference
func (x *ActorSystem) CancelSchedule(reference string) error {
	return x.scheduler.Load().Cancel(reference)
}

// Name returns the actor system name
func (x *ActorSystem) Name() string {
	return x.name
}

// Logger returns the actor system logger
func (x *ActorSystem) Logger() log.Logger {
	return x.logger
}

// Running returns true when the actor system is running
func (x *ActorSystem) Running() bool {
	return x.started.Load()
}

// Uptime returns the time elapsed since the actor system started
func (x *ActorSystem) Uptime() time.Duration {
	if !x.Running() {
		return 0
	}
	return time.Since(x.startedAt.Load())
}

// Metric returns a snapshot of the actor system metrics.
// It returns nil when the actor system is not running.
func (x *ActorSystem) Metric(context.Context) *Metric {
	if !x.Running() {
		return nil
	}

	return &Metric{
		deadlettersCount: x.deadlettersCount.Load(),
		actorsCount:      x.actorsCount.Load(),
		uptime:           x.Uptime(),
	}
}

// spawn creates an actor under parent, or a top-level actor when parent is
// nil, and starts it once PreStart succeeded
func (x *ActorSystem) spawn(ctx context.Context, parent *cell, name string, actor Actor, opts ...SpawnOption) (*PID, error) {
	if !x.Running() {
		return nil, gerrors.ErrActorSystemNotStarted
	}

	if strings.TrimSpace(name) == "" {
		return nil, gerrors.ErrNameRequired
	}

	if actor == nil {
		return nil, gerrors.ErrUndefinedActor
	}

	if parent != nil && !parent.isAlive() {
		return nil, gerrors.ErrDead
	}

	config := newSpawnConfig(x, opts...)
	if err := validation.New(validation.AllErrors()).
		AddValidator(validation.NewPathSegmentValidator("actor name", name)).
		AddValidator(config).
		Validate(); err != nil {
		return nil, gerrors.NewErrInvalidConfig(err)
	}

	c, err := newCell(x, parent, name, actor, config)
	if err != nil {
		return nil, err
	}

	if !x.registry.StoreIfAbsent(c.id, c) {
		return nil, gerrors.NewErrActorAlreadyExists(c.id)
	}

	if parent != nil {
		parent.children.Add(c)
	}

	if err := c.init(ctx); err != nil {
		c.requestStop()
		c.discard()
		x.registry.Delete(c.id)
		if parent != nil {
			parent.children.Remove(c)
		}
		return nil, gerrors.NewSpawnError(err)
	}

	x.actorsCount.Inc()
	c.start()

	x.logger.Debugf("Actor %s started", c.id)
	x.publish(&ActorStarted{Actor: c.id, StartedAt: time.Now()})
	return c.pid, nil
}

// unregister removes a stopped actor from the registry
func (x *ActorSystem) unregister(c *cell) {
	if current, ok := x.registry.Load(c.id); ok && current == c {
		x.registry.Delete(c.id)
		x.actorsCount.Dec()
	}
}

func (x *ActorSystem) publish(event any) {
	x.eventStream.Publish(eventsTopic, event)
}

// deadletter records a message that will never be handled
func (x *ActorSystem) deadletter(c *cell, env *Envelope, reason error) {
	x.deadlettersCount.Inc()
	x.metrics.DeadletterCount().Add(context.Background(), 1, c.metricAttrs)

	var sender string
	if env.sender != nil {
		sender = env.sender.ID()
	}

	x.logger.Debugf("Actor %s dead letter %T: %v", c.id, env.message, reason)
	x.publish(&Deadletter{
		Sender:   sender,
		Receiver: c.id,
		Message:  env.message,
		SendTime: env.sendTime,
		Reason:   errorString(reason),
	})
}

func (x *ActorSystem) recordProcessed(c *cell) {
	x.metrics.ProcessedCount().Add(context.Background(), 1, c.metricAttrs)
}

func (x *ActorSystem) recordFailure(c *cell) {
	x.metrics.FailureCount().Add(context.Background(), 1, c.metricAttrs)
}

func (x *ActorSystem) recordRestart(c *cell) {
	x.metrics.RestartCount().Add(context.Background(), 1, c.metricAttrs)
}

func (x *ActorSystem) recordTransition(c *cell) {
	x.metrics.TransitionsCount().Add(context.Background(), 1, c.metricAttrs)
}

// observeMailboxes reports the mailbox depth of every live actor
func (x *ActorSystem) observeMailboxes(_ context.Context, observer otelmetric.Observer) error {
	for _, c := range x.registry.Values() {
		observer.ObserveInt64(x.metrics.MailboxSize(), c.mailbox.Len(), c.metricAttrs)
	}
	return nil
}
