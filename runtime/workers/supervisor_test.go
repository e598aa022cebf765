package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// funcWorker adapts a closure into a contract.Worker for tests.
type funcWorker struct {
	run func(ctx context.Context) error
}

func (w *funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

func TestSupervisor_WorkerFinishesCleanly(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	var runs atomic.Int32
	worker := &funcWorker{run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	// When the worker returns nil
	sup := NewSupervisor(log)
	sup.Add(worker)
	sup.Run(context.Background())

	// Then it ran once and was never restarted
	req.Equal(int32(1), runs.Load())
}

func TestSupervisor_RestartsOnError(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a worker that fails twice before succeeding
	var runs atomic.Int32
	worker := &funcWorker{run: func(context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("flaky dependency")
		}
		return nil
	}}

	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Then the supervisor retried until the clean return
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not finish after worker recovery")
	}
	req.Equal(int32(3), runs.Load())
}

func TestSupervisor_RecoversPanic(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a worker that panics once then succeeds
	var runs atomic.Int32
	worker := &funcWorker{run: func(context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}}

	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Then the panic was absorbed and the worker restarted
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not survive the panic")
	}
	req.Equal(int32(2), runs.Load())
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	started := make(chan struct{})
	worker := &funcWorker{run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}

	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// When stopping the supervisor after the worker is live
	<-started
	sup.Stop()

	// Then Run unblocks without restarting the canceled worker
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisor_ParentContextCancelation(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	worker := &funcWorker{run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}

	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not follow parent cancelation")
	}
	req.ErrorIs(ctx.Err(), context.Canceled)
}
