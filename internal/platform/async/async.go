// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package async runs fire-and-forget background work without letting a panic
// take the process down.
package async

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

// SafeGo executes fn in a goroutine with a timeout and panic recovery.
//
// The task context is detached from parent's cancellation (an HTTP request
// finishing must not abort an outgoing mail) but keeps its values, so the
// request logger still correlates the output.
func SafeGo(parent context.Context, timeout time.Duration, taskName string, logger *slog.Logger, fn func(context.Context) error) {
	go func() {
		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
		defer cancel()

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("async_task_panic",
					slog.String("task", taskName),
					slog.Any("panic", recovered),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := fn(taskCtx); err != nil {
			logger.Warn("async_task_failed", slog.String("task", taskName), slog.Any("error", err))
		}
	}()
}
