// Package promcollector exports tfgraph operation metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/tfgraph"
)

// Collector implements tfgraph.MetricsCollector.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	loads         *prometheus.CounterVec
	searchResults prometheus.Histogram
}

var _ tfgraph.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tfgraph_operation_latency_seconds",
			Help:    "Latency of load, compile and search operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tfgraph_loads_total",
			Help: "Corpus loads by source",
		}, []string{"source", "status"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfgraph_search_results",
			Help:    "Number of tuples returned per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	for _, m := range []prometheus.Collector{c.opLatency, c.loads, c.searchResults} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLoad implements tfgraph.MetricsCollector.
func (c *Collector) RecordLoad(source tfgraph.LoadSource, d time.Duration, err error) {
	c.opLatency.WithLabelValues("load", status(err)).Observe(d.Seconds())
	c.loads.WithLabelValues(string(source), status(err)).Inc()
}

// RecordCompile implements tfgraph.MetricsCollector.
func (c *Collector) RecordCompile(d time.Duration, err error) {
	c.opLatency.WithLabelValues("compile", status(err)).Observe(d.Seconds())
}

// RecordSearch implements tfgraph.MetricsCollector.
func (c *Collector) RecordSearch(results int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("search", status(err)).Observe(d.Seconds())
	if err == nil {
		c.searchResults.Observe(float64(results))
	}
}
