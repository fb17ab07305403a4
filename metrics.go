package refrain

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; a ready
// Prometheus implementation ships in this package.
type MetricsCollector interface {
	// RecordAdd is called after each song addition.
	RecordAdd(duration time.Duration)

	// RecordRebuild is called after each rebuild pass. err is nil when no
	// candidates were rejected.
	RecordRebuild(songs int, duration time.Duration, err error)

	// RecordRepair is called after each standalone repair pass.
	RecordRepair(duration time.Duration)

	// RecordRemove is called after each song removal.
	RecordRemove(duration time.Duration, err error)

	// RecordRecommend is called after each recommendation query. n is the
	// requested count, results the delivered count.
	RecordRecommend(n, results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration)                      {}
func (NoopMetricsCollector) RecordRebuild(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordRepair(time.Duration)                   {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)            {}
func (NoopMetricsCollector) RecordRecommend(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount             atomic.Int64
	RebuildCount         atomic.Int64
	RebuildErrors        atomic.Int64
	RebuildTotalNanos    atomic.Int64
	RepairCount          atomic.Int64
	RemoveCount          atomic.Int64
	RemoveErrors         atomic.Int64
	RecommendCount       atomic.Int64
	RecommendErrors      atomic.Int64
	RecommendResults     atomic.Int64
	RecommendTotalNanos  atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(time.Duration) {
	b.AddCount.Add(1)
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(songs int, duration time.Duration, err error) {
	b.RebuildCount.Add(1)
	b.RebuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}

// RecordRepair implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRepair(time.Duration) {
	b.RepairCount.Add(1)
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordRecommend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecommend(n, results int, duration time.Duration, err error) {
	b.RecommendCount.Add(1)
	b.RecommendResults.Add(int64(results))
	b.RecommendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RecommendErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:           b.AddCount.Load(),
		RebuildCount:       b.RebuildCount.Load(),
		RebuildErrors:      b.RebuildErrors.Load(),
		RebuildAvgNanos:    avgNanos(b.RebuildTotalNanos.Load(), b.RebuildCount.Load()),
		RepairCount:        b.RepairCount.Load(),
		RemoveCount:        b.RemoveCount.Load(),
		RemoveErrors:       b.RemoveErrors.Load(),
		RecommendCount:     b.RecommendCount.Load(),
		RecommendErrors:    b.RecommendErrors.Load(),
		RecommendResults:   b.RecommendResults.Load(),
		RecommendAvgNanos:  avgNanos(b.RecommendTotalNanos.Load(), b.RecommendCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount          int64
	RebuildCount      int64
	RebuildErrors     int64
	RebuildAvgNanos   int64
	RepairCount       int64
	RemoveCount       int64
	RemoveErrors      int64
	RecommendCount    int64
	RecommendErrors   int64
	RecommendResults  int64
	RecommendAvgNanos int64
}
