// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"
)

func newScanCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the cache directory and report what's stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ro)
		},
	}
	return cmd
}

func runScan(cmd *cobra.Command, ro *RootOpts) error {
	start := time.Now()
	info, err := hfcache.ScanCacheDir(ro.CacheDir)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, hfcache.ErrInvalidCacheRoot) {
			return fmt.Errorf("invalid cache root %q: %w", ro.CacheDir, err)
		}
		return err
	}

	ro.recorder.ObserveScanDuration(elapsed)
	ro.recorder.SetLastScanBytes(info.SizeOnDisk)
	ro.recorder.SetLastScanRepoCount(len(info.Repos))

	for _, w := range info.Warnings {
		ro.logger.Warn(w)
		ro.recorder.IncScanWarning()
	}

	out := cmd.OutOrStdout()

	if ro.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	printReport(out, info, ro.Sort, ro.Verbose, elapsed)
	return nil
}
