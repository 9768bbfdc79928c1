// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package cli wires the hfcache-inspector command tree together.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bodaay/HuggingFaceModelDownloader/internal/metrics"
	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"
)

// RootOpts holds the persistent flags shared by every subcommand.
type RootOpts struct {
	CacheDir    string
	Config      string
	Format      string
	Sort        string
	Quiet       bool
	Verbose     bool
	LogLevel    string
	LogFile     string
	MetricsAddr string

	logger   *slog.Logger
	cfg      *hfcache.Config
	recorder metrics.Recorder
}

// NewRootCmd builds the top-level "hfcache-inspector" command.
func NewRootCmd() *cobra.Command {
	ro := &RootOpts{}

	root := &cobra.Command{
		Use:           "hfcache-inspector",
		Short:         "Inspect and prune a local HuggingFace-style model/dataset cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.init()
		},
	}

	root.PersistentFlags().StringVar(&ro.CacheDir, "cache-dir", "", "cache root directory (default: $HF_HOME/hub or ~/.cache/huggingface/hub)")
	root.PersistentFlags().StringVar(&ro.Config, "config", "", "path to config file (default: ~/.config/hfcache-inspector/config.yaml)")
	root.PersistentFlags().StringVar(&ro.Format, "format", "", "output format: table or json")
	root.PersistentFlags().StringVar(&ro.Sort, "sort", "", "sort repos by: name, size, or date")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "suppress non-essential output")
	root.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "list revisions, not just repos")
	root.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&ro.LogFile, "log-file", "", "write logs to this file instead of stderr")
	root.PersistentFlags().StringVar(&ro.MetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090); disabled when empty")

	root.AddCommand(newScanCmd(ro))
	root.AddCommand(newDeleteCmd(ro))
	root.AddCommand(newWatchCmd(ro))

	return root
}

// init loads configuration, layers flags on top, and installs the logger.
// It is idempotent so it can safely run once per command invocation via
// PersistentPreRunE.
func (ro *RootOpts) init() error {
	cfg, err := hfcache.LoadConfig(ro.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyDefaults()

	if ro.CacheDir != "" {
		cfg.CacheDir = ro.CacheDir
	}
	if ro.Format != "" {
		cfg.Output = ro.Format
	}
	if ro.Sort != "" {
		cfg.Sort = ro.Sort
	}
	if ro.LogLevel != "" {
		cfg.LogLevel = ro.LogLevel
	}
	if ro.Verbose {
		cfg.LogLevel = "debug"
	}
	if ro.MetricsAddr != "" {
		cfg.MetricsAddr = ro.MetricsAddr
	}

	ro.cfg = cfg
	ro.CacheDir = cfg.CacheDir
	ro.Format = cfg.Output
	ro.Sort = cfg.Sort
	ro.MetricsAddr = cfg.MetricsAddr

	ro.logger = newLogger(cfg, ro.LogFile, ro.Quiet)
	ro.recorder = ro.startMetrics()
	return nil
}

// startMetrics wires up a Recorder for this run. When MetricsAddr is unset
// it returns a NoopRecorder, per the Null Object pattern, so callers never
// need to nil-check before recording a measurement. When set, it registers
// the collectors on a fresh registry and serves them over HTTP in the
// background; a listener failure is logged but never fails the command,
// matching the spec's "metrics are opt-in and best-effort" stance.
func (ro *RootOpts) startMetrics() metrics.Recorder {
	if ro.MetricsAddr == "" {
		return metrics.NoopRecorder{}
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(ro.MetricsAddr, mux); err != nil {
			ro.logger.Warn("metrics server stopped", "error", err)
		}
	}()

	ro.logger.Info("serving metrics", "addr", ro.MetricsAddr)
	return rec
}

// newLogger builds the shared slog.Logger for a run, following the text
// vs. JSON handler choice straight off cfg.LogFormat.
func newLogger(cfg *hfcache.Config, logFile string, quiet bool) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	out := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, for the
// long-running watch command.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
