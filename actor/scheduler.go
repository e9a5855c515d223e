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
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/kestrel/errors"
	"github.com/tochemey/kestrel/log"
)

// scheduler delivers messages to actors at a later time
type scheduler struct {
	// helps lock concurrent access
	mu sync.Mutex
	// underlying Scheduler
	quartzScheduler quartz.Scheduler
	// states whether the quartzScheduler has started or not
	started *atomic.Bool
	logger  log.Logger
	// bounds the wait for running jobs on stop
	stopTimeout time.Duration
}

func newScheduler(logger log.Logger, stopTimeout time.Duration) *scheduler {
	// create an instance of quartz scheduler with logger off
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))

	return &scheduler{
		started:         atomic.NewBool(false),
		quartzScheduler: quartzScheduler,
		logger:          logger,
		stopTimeout:     stopTimeout,
	}
}

func (x *scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.logger.Info("starting messages scheduler...")
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
	x.logger.Info("messages scheduler started.")
}

func (x *scheduler) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.logger.Info("stopping messages scheduler...")
	x.mu.Lock()
	defer x.mu.Unlock()
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)

	x.logger.Info("messages scheduler stopped.")
}

// ScheduleOnce sends message to pid once after delay
func (x *scheduler) ScheduleOnce(message any, pid *PID, delay time.Duration, opts ...ScheduleOption) error {
	config := newScheduleConfig(opts...)
	return x.schedule(config, message, pid, func() (quartz.Trigger, error) {
		return quartz.NewRunOnceTrigger(delay), nil
	})
}

// Schedule sends message to pid every interval
func (x *scheduler) Schedule(message any, pid *PID, interval time.Duration, opts ...ScheduleOption) error {
	config := newScheduleConfig(opts...)
	return x.schedule(config, message, pid, func() (quartz.Trigger, error) {
		return quartz.NewSimpleTrigger(interval), nil
	})
}

// ScheduleWithCron sends message to pid following the cron expression
func (x *scheduler) ScheduleWithCron(message any, pid *PID, cronExpression string, opts ...ScheduleOption) error {
	config := newScheduleConfig(opts...)
	return x.schedule(config, message, pid, func() (quartz.Trigger, error) {
		location := time.Now().Location()
		trigger, err := quartz.NewCronTriggerWithLoc(cronExpression, location)
		if err != nil {
			x.logger.Error(fmt.Errorf("failed to schedule message: %w", err))
			return nil, err
		}
		return trigger, nil
	})
}

// Cancel removes the scheduled message with the given reference
func (x *scheduler) Cancel(reference string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	if err := x.quartzScheduler.DeleteJob(quartz.NewJobKey(reference)); err != nil {
		return errors.Join(gerrors.ErrScheduledReferenceNotFound, err)
	}
	return nil
}

func (x *scheduler) schedule(config *scheduleConfig, message any, pid *PID, trigger func() (quartz.Trigger, error)) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	job := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			err := Tell(ctx, pid, message, WithSender(config.sender))
			return err == nil, err
		},
	)

	t, err := trigger()
	if err != nil {
		return err
	}

	detail := quartz.NewJobDetail(job, quartz.NewJobKey(config.reference))
	return x.quartzScheduler.ScheduleJob(detail, t)
}
