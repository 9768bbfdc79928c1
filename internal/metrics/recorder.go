// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package metrics instruments scan and delete activity behind a Recorder
// interface. Every component that can be instrumented takes a Recorder, and
// every call site defaults to NoopRecorder: metrics are an opt-in that
// activates only when a caller constructs a PrometheusRecorder and passes it
// in, never a hidden dependency.
package metrics

import "time"

// Recorder observes cache-inspector activity. NoopRecorder satisfies this
// with zero overhead when metrics aren't configured.
type Recorder interface {
	ObserveScanDuration(d time.Duration)
	SetLastScanBytes(bytes int64)
	SetLastScanRepoCount(n int)
	IncScanWarning()
	ObserveDeleteFreedBytes(bytes int64)
	IncDeleteFailure()
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveScanDuration(time.Duration) {}
func (NoopRecorder) SetLastScanBytes(int64)            {}
func (NoopRecorder) SetLastScanRepoCount(int)          {}
func (NoopRecorder) IncScanWarning()                   {}
func (NoopRecorder) ObserveDeleteFreedBytes(int64)     {}
func (NoopRecorder) IncDeleteFailure()                 {}
