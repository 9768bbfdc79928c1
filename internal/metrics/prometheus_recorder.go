// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once sync.Once

	scanDuration   prom.Histogram
	lastScanBytes  prom.Gauge
	lastScanRepos  prom.Gauge
	scanWarnings   prom.Counter
	deleteFreed    prom.Counter
	deleteFailures prom.Counter
}

// NewPrometheusRecorder constructs and registers the cache-inspector's
// Prometheus metrics against reg (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.scanDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "hfcache_inspector",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a full cache scan",
			Buckets:   prom.DefBuckets,
		})
		pr.lastScanBytes = prom.NewGauge(prom.GaugeOpts{
			Namespace: "hfcache_inspector",
			Name:      "last_scan_bytes",
			Help:      "Total deduplicated size on disk observed by the most recent scan",
		})
		pr.lastScanRepos = prom.NewGauge(prom.GaugeOpts{
			Namespace: "hfcache_inspector",
			Name:      "last_scan_repo_count",
			Help:      "Number of repositories observed by the most recent scan",
		})
		pr.scanWarnings = prom.NewCounter(prom.CounterOpts{
			Namespace: "hfcache_inspector",
			Name:      "scan_warnings_total",
			Help:      "Count of malformed cache entries encountered across all scans",
		})
		pr.deleteFreed = prom.NewCounter(prom.CounterOpts{
			Namespace: "hfcache_inspector",
			Name:      "delete_freed_bytes_total",
			Help:      "Cumulative bytes freed by executed deletion plans",
		})
		pr.deleteFailures = prom.NewCounter(prom.CounterOpts{
			Namespace: "hfcache_inspector",
			Name:      "delete_path_failures_total",
			Help:      "Count of paths that failed to delete during plan execution",
		})
		reg.MustRegister(pr.scanDuration, pr.lastScanBytes, pr.lastScanRepos, pr.scanWarnings, pr.deleteFreed, pr.deleteFailures)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveScanDuration(d time.Duration) {
	pr.scanDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) SetLastScanBytes(bytes int64) {
	pr.lastScanBytes.Set(float64(bytes))
}

func (pr *PrometheusRecorder) SetLastScanRepoCount(n int) {
	pr.lastScanRepos.Set(float64(n))
}

func (pr *PrometheusRecorder) IncScanWarning() {
	pr.scanWarnings.Inc()
}

func (pr *PrometheusRecorder) ObserveDeleteFreedBytes(bytes int64) {
	pr.deleteFreed.Add(float64(bytes))
}

func (pr *PrometheusRecorder) IncDeleteFailure() {
	pr.deleteFailures.Inc()
}
