// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// ResetTokenSweeper clears password reset tokens that expired before now.
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(context context.Context, now time.Time) (int64, error)
}

// UserCounter reports how many user documents exist.
type UserCounter interface {
	Count(context context.Context) (int64, error)
}

// RegisterDefaults wires the maintenance jobs of the API server.
func RegisterDefaults(scheduler *Scheduler, sweeper ResetTokenSweeper, counter UserCounter) error {
	err := scheduler.Register(ResetTokenSweepSpec, "reset-token-sweep", func(context context.Context) error {
		cleared, err := sweeper.ClearExpiredResetTokens(context, time.Now())
		if err != nil {
			return err
		}
		if cleared > 0 {
			scheduler.logger.Info("reset_tokens_cleared", slog.Int64("count", cleared))
		}
		return nil
	})
	if err != nil {
		return err
	}

	scheduler.Once(StartupReportDelay, "startup-report", func(context context.Context) error {
		total, err := counter.Count(context)
		if err != nil {
			return err
		}
		scheduler.logger.Info("startup_report", slog.Int64("users", total))
		return nil
	})

	return nil
}
