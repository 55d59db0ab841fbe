// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler runs periodic maintenance jobs in-process.

It wraps robfig/cron with a slog bridge and panic recovery. Jobs receive a
context that is cancelled when the scheduler stops, so a shutdown never waits
on a job stuck in the database.

Registered jobs:

  - reset-token-sweep: clears expired password reset tokens every 15 minutes.
  - startup-report: logs the number of registered users once after boot.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// ResetTokenSweepSpec is the cron schedule of the reset token sweep.
	ResetTokenSweepSpec = "@every 15m"

	// StartupReportDelay is how long after boot the startup report runs.
	StartupReportDelay = 5 * time.Second

	jobTimeout = time.Minute
)

// Job is a unit of scheduled work.
type Job func(context context.Context) error

// Scheduler owns the cron runner and the context handed to jobs.
type Scheduler struct {
	runner *cron.Cron
	logger *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	bridge := cronLogger{logger: logger}
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner: cron.New(
			cron.WithLogger(bridge),
			cron.WithChain(cron.Recover(bridge), cron.SkipIfStillRunning(bridge)),
		),
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
	}
}

// Register adds a named job on a cron spec (standard 5-field or "@every").
func (scheduler *Scheduler) Register(spec, name string, job Job) error {
	_, err := scheduler.runner.AddFunc(spec, func() {
		scheduler.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for %s: %w", spec, name, err)
	}
	return nil
}

// Once runs job a single time after delay, unless the scheduler stops first.
func (scheduler *Scheduler) Once(delay time.Duration, name string, job Job) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			scheduler.run(name, job)
		case <-scheduler.baseCtx.Done():
		}
	}()
}

// Start begins firing registered jobs.
func (scheduler *Scheduler) Start() {
	scheduler.runner.Start()
	scheduler.logger.Info("scheduler_started", slog.Int("jobs", len(scheduler.runner.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (scheduler *Scheduler) Stop() {
	scheduler.cancel()
	<-scheduler.runner.Stop().Done()
}

func (scheduler *Scheduler) run(name string, job Job) {
	jobCtx, cancel := context.WithTimeout(scheduler.baseCtx, jobTimeout)
	defer cancel()

	startTime := time.Now()
	if err := job(jobCtx); err != nil {
		scheduler.logger.Error("scheduled_job_failed", slog.String("job", name), slog.Any("error", err))
		return
	}
	scheduler.logger.Debug("scheduled_job_finished",
		slog.String("job", name),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
}

// cronLogger adapts cron.Logger to slog.
type cronLogger struct {
	logger *slog.Logger
}

// Info implements cron.Logger.
func (bridge cronLogger) Info(msg string, keysAndValues ...interface{}) {
	bridge.logger.Debug("cron_"+msg, keysAndValues...)
}

// Error implements cron.Logger.
func (bridge cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	bridge.logger.Error("cron_"+msg, append(keysAndValues, "error", err)...)
}
