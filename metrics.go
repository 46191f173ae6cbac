package tfgraph

import (
	"sync/atomic"
	"time"
)

// LoadSource tells where a loaded corpus came from.
type LoadSource string

const (
	// SourceText is a corpus parsed from feature files without a cache.
	SourceText LoadSource = "text"
	// SourceCache is a corpus mapped from an existing compiled cache.
	SourceCache LoadSource = "cache"
	// SourceCompiled is a corpus compiled during the load and then mapped.
	SourceCompiled LoadSource = "compiled"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see the metrics/promcollector package.
type MetricsCollector interface {
	// RecordLoad is called after each load.
	// err is nil if successful.
	RecordLoad(source LoadSource, duration time.Duration, err error)

	// RecordCompile is called after each explicit or implicit compilation.
	RecordCompile(duration time.Duration, err error)

	// RecordSearch is called after each Corpus.Search.
	// results is the number of tuples returned.
	RecordSearch(results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(LoadSource, time.Duration, error) {}
func (NoopMetricsCollector) RecordCompile(time.Duration, error)          {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	LoadFromCache     atomic.Int64
	CompileCount      atomic.Int64
	CompileErrors     atomic.Int64
	CompileTotalNanos atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchResults     atomic.Int64
	SearchTotalNanos  atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(source LoadSource, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	if source == SourceCache {
		b.LoadFromCache.Add(1)
	}
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(duration time.Duration, err error) {
	b.CompileCount.Add(1)
	b.CompileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompileErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchResults.Add(int64(results))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadFromCache:   b.LoadFromCache.Load(),
		CompileCount:    b.CompileCount.Load(),
		CompileErrors:   b.CompileErrors.Load(),
		CompileAvgNanos: avg(b.CompileTotalNanos.Load(), b.CompileCount.Load()),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchResults:   b.SearchResults.Load(),
		SearchAvgNanos:  avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadFromCache   int64
	CompileCount    int64
	CompileErrors   int64
	CompileAvgNanos int64
	SearchCount     int64
	SearchErrors    int64
	SearchResults   int64
	SearchAvgNanos  int64
}
