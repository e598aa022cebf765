package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsProvider returns live counters from the hub (connections, named
// sessions, catalog size) for telemetry and the inspect page.
type StatsProvider func() map[string]any

// TelemetryWorker periodically logs process self-stats together with the
// hub counters. Purely observational; it never touches chat state.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	stats    StatsProvider
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, stats StatsProvider) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, stats: stats}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			fields := []any{"cpu_percent", cpu, "ram_bytes", rss}
			for key, value := range w.stats() {
				fields = append(fields, key, value)
			}
			w.log.Info("Relay status", fields...)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
