// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNoopRecorder only needs to prove it satisfies Recorder without
// panicking; it carries no observable state by design.
func TestNoopRecorder_SatisfiesInterfaceWithoutPanicking(t *testing.T) {
	var rec Recorder = NoopRecorder{}

	rec.ObserveScanDuration(time.Second)
	rec.SetLastScanBytes(1024)
	rec.SetLastScanRepoCount(3)
	rec.IncScanWarning()
	rec.ObserveDeleteFreedBytes(2048)
	rec.IncDeleteFailure()
}

func TestPrometheusRecorder_RecordsObservedValues(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.SetLastScanBytes(4096)
	rec.SetLastScanRepoCount(2)
	rec.IncScanWarning()
	rec.IncScanWarning()
	rec.ObserveDeleteFreedBytes(512)
	rec.IncDeleteFailure()

	if got := testutil.ToFloat64(rec.lastScanBytes); got != 4096 {
		t.Errorf("lastScanBytes = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(rec.lastScanRepos); got != 2 {
		t.Errorf("lastScanRepos = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.scanWarnings); got != 2 {
		t.Errorf("scanWarnings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.deleteFreed); got != 512 {
		t.Errorf("deleteFreed = %v, want 512", got)
	}
	if got := testutil.ToFloat64(rec.deleteFailures); got != 1 {
		t.Errorf("deleteFailures = %v, want 1", got)
	}
}

func TestNewPrometheusRecorder_NilRegistryGetsItsOwn(t *testing.T) {
	rec := NewPrometheusRecorder(nil)
	rec.SetLastScanBytes(1)
	if got := testutil.ToFloat64(rec.lastScanBytes); got != 1 {
		t.Errorf("lastScanBytes = %v, want 1", got)
	}
}
