// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"
)

func newWatchCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the cache directory and re-print the report on every change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, ro)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, ro *RootOpts) error {
	debounce := ro.cfg.Watch.Debounce
	if debounce == 0 {
		debounce = 2 * time.Second
	}

	w, err := hfcache.NewWatcher(ro.CacheDir, debounce, ro.logger)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)...\n", ro.CacheDir)

	w.Run(ctx, func(info *hfcache.HFCacheInfo) {
		ro.recorder.SetLastScanBytes(info.SizeOnDisk)
		ro.recorder.SetLastScanRepoCount(len(info.Repos))
		for _, warning := range info.Warnings {
			ro.logger.Warn(warning)
			ro.recorder.IncScanWarning()
		}
		printReport(out, info, ro.Sort, ro.Verbose, 0)
	})

	return nil
}
