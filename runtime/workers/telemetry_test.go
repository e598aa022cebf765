package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestTelemetryWorker_PollsStatsUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	var polls atomic.Int32
	worker := NewTelemetryWorker(log, 10*time.Millisecond, func() map[string]any {
		polls.Add(1)
		return map[string]any{"Connections": 0}
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Given a few ticks worth of runtime
	req.Eventually(func() bool { return polls.Load() >= 2 },
		2*time.Second, 5*time.Millisecond)

	// When the context is canceled
	cancel()

	// Then the worker returns promptly with the cancelation
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry worker did not stop")
	}
}
