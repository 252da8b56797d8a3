package main

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/fitquest/pkg/metrics"
)

const (
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

type queueLen interface {
	Len(ctx context.Context) int
}

type poolSize interface {
	Size() int
}

// runMetricsUpdaters refreshes the system and event pipeline gauges until
// ctx is done.
func runMetricsUpdaters(ctx context.Context, q queueLen, p poolSize) {
	system := time.NewTicker(systemMetricsInterval)
	defer system.Stop()
	pipeline := time.NewTicker(serviceMetricsInterval)
	defer pipeline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-system.C:
			updateSystemMetrics()
		case <-pipeline.C:
			updatePipelineMetrics(ctx, q, p)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updatePipelineMetrics(ctx context.Context, q queueLen, p poolSize) {
	metrics.UpdateQueueSize(q.Len(ctx))
	metrics.UpdateWorkerCount(p.Size())
}
