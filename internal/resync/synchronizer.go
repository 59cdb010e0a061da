// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package resync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/replicamap/errors"
	"github.com/tochemey/replicamap/log"
)

const defaultStopTimeout = 2 * time.Second

// Task is the unit of work run on every tick
type Task func(ctx context.Context) error

// Synchronizer runs a Task at a fixed interval until it is stopped.
// The first run happens one interval after Start. A run that fails is logged and the
// next one is still scheduled. A tick that fires while the previous run is in progress
// is skipped.
type Synchronizer struct {
	mu sync.Mutex

	name            string
	interval        time.Duration
	task            Task
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	running         *atomic.Bool
	logger          log.Logger
	stopTimeout     time.Duration
	cancel          context.CancelFunc
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithStopTimeout sets how long Stop waits for an in-progress run
func WithStopTimeout(timeout time.Duration) Option {
	return func(s *Synchronizer) {
		s.stopTimeout = timeout
	}
}

// New creates a Synchronizer. The name identifies its job in the logs.
func New(name string, interval time.Duration, task Task, opts ...Option) *Synchronizer {
	// quartz logs are noisy and not structured, keep them off
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))

	synchronizer := &Synchronizer{
		name:            name,
		interval:        interval,
		task:            task,
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		running:         atomic.NewBool(false),
		logger:          log.DiscardLogger,
		stopTimeout:     defaultStopTimeout,
	}

	for _, opt := range opts {
		opt(synchronizer)
	}

	return synchronizer
}

// Start schedules the periodic task. The task lifetime is not bound to ctx: it runs
// until Stop is called.
func (x *Synchronizer) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.started.Load() {
		return nil
	}

	if x.interval <= 0 {
		return errors.New("resync interval must be greater than zero")
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	x.quartzScheduler.Start(ctx)

	// runs are bound to the synchronizer context so that stopping the scheduler
	// does not abort the one in progress
	periodic := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		return x.tick(ctx), nil
	})

	detail := quartz.NewJobDetail(periodic, quartz.NewJobKey(x.name))
	if err := x.quartzScheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(x.interval)); err != nil {
		x.quartzScheduler.Stop()
		cancel()
		return err
	}

	x.cancel = cancel
	x.started.Store(x.quartzScheduler.IsStarted())
	x.logger.Infof("synchronizer=(%s) started with interval=(%s)", x.name, x.interval)
	return nil
}

// Stop cancels the future runs and waits for the in-progress one, if any, up to the
// stop timeout. A run still going after that is canceled and ErrShutdownTimeout is returned.
func (x *Synchronizer) Stop(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return nil
	}

	x.logger.Infof("stopping synchronizer=(%s)...", x.name)
	_ = x.quartzScheduler.Clear()
	x.started.Store(false)

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()

	var err error
	if !x.awaitRun(ctx) {
		x.logger.Warnf("synchronizer=(%s) did not stop within %s", x.name, x.stopTimeout)
		err = gerrors.ErrShutdownTimeout
	}

	x.cancel()
	x.quartzScheduler.Stop()
	x.quartzScheduler.Wait(ctx)

	if err == nil {
		x.logger.Infof("synchronizer=(%s) stopped", x.name)
	}
	return err
}

// awaitRun waits for the in-progress run to return and reports whether it did before ctx is done
func (x *Synchronizer) awaitRun(ctx context.Context) bool {
	for x.running.Load() {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(10 * time.Millisecond):
		}
	}
	return true
}

// IsStarted reports whether the periodic task is scheduled
func (x *Synchronizer) IsStarted() bool {
	return x.started.Load()
}

// tick runs the task once and reports whether it succeeded
func (x *Synchronizer) tick(ctx context.Context) bool {
	if !x.running.CompareAndSwap(false, true) {
		x.logger.Debugf("synchronizer=(%s) skipping tick: previous run still in progress", x.name)
		return false
	}
	defer x.running.Store(false)

	// checked once running is set so that Stop either waits for this run or it never starts
	if !x.started.Load() {
		return false
	}

	if err := x.task(ctx); err != nil {
		x.logger.Warnf("synchronizer=(%s) run failed: %v", x.name, err)
		return false
	}
	return true
}
