package codebook

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordDesign is called after each training run.
	// size is the final codebook size, duration is the total time taken,
	// err is nil if successful.
	RecordDesign(size int, duration time.Duration, err error)

	// RecordEncode is called after each batch encode.
	// count is the number of vectors encoded.
	RecordEncode(count int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save.
	RecordSnapshot(duration time.Duration, err error)

	// RecordPublish is called after each artifact upload.
	// bytes is the number of bytes written.
	RecordPublish(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDesign(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordEncode(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error)       {}
func (NoopMetricsCollector) RecordPublish(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DesignCount      atomic.Int64
	DesignErrors     atomic.Int64
	DesignTotalNanos atomic.Int64
	EncodeCount      atomic.Int64
	EncodeVectors    atomic.Int64
	EncodeErrors     atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
	PublishCount     atomic.Int64
	PublishBytes     atomic.Int64
	PublishErrors    atomic.Int64
}

// RecordDesign implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDesign(size int, duration time.Duration, err error) {
	b.DesignCount.Add(1)
	b.DesignTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DesignErrors.Add(1)
	}
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(count int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeVectors.Add(int64(count))
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// RecordPublish implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPublish(bytes int64, duration time.Duration, err error) {
	b.PublishCount.Add(1)
	b.PublishBytes.Add(bytes)
	if err != nil {
		b.PublishErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DesignCount:     b.DesignCount.Load(),
		DesignErrors:    b.DesignErrors.Load(),
		DesignAvgNanos:  b.getAvgDesignNanos(),
		EncodeCount:     b.EncodeCount.Load(),
		EncodeVectors:   b.EncodeVectors.Load(),
		EncodeErrors:    b.EncodeErrors.Load(),
		SnapshotCount:   b.SnapshotCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
		PublishCount:    b.PublishCount.Load(),
		PublishBytes:    b.PublishBytes.Load(),
		PublishErrors:   b.PublishErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDesignNanos() int64 {
	count := b.DesignCount.Load()
	if count == 0 {
		return 0
	}
	return b.DesignTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DesignCount     int64
	DesignErrors    int64
	DesignAvgNanos  int64
	EncodeCount     int64
	EncodeVectors   int64
	EncodeErrors    int64
	SnapshotCount   int64
	SnapshotErrors  int64
	PublishCount    int64
	PublishBytes    int64
	PublishErrors   int64
}
