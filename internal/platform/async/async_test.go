// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSafeGo_OutlivesParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	SafeGo(parent, time.Second, "probe", discard, func(ctx context.Context) error {
		cancel()
		time.Sleep(10 * time.Millisecond)
		done <- ctx.Err()
		return nil
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	finished := make(chan struct{})

	SafeGo(context.Background(), time.Second, "boom", discard, func(ctx context.Context) error {
		defer close(finished)
		panic("kaboom")
	})

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSafeGo_ReportsError(t *testing.T) {
	ran := make(chan struct{})
	SafeGo(context.Background(), time.Second, "failing", discard, func(ctx context.Context) error {
		close(ran)
		return errors.New("smtp unavailable")
	})
	<-ran
}
