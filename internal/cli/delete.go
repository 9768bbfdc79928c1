// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"

	"github.com/bodaay/HuggingFaceModelDownloader/internal/tui"
)

func newDeleteCmd(ro *RootOpts) *cobra.Command {
	var dryRun, yes, allStale bool

	cmd := &cobra.Command{
		Use:   "delete [revision...]",
		Short: "Delete cached revisions and free their disk space",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, ro, args, dryRun, yes, allStale)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without deleting anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&allStale, "all-stale", false, "select every detached revision (no ref pointing to it) in every repo")

	return cmd
}

func runDelete(cmd *cobra.Command, ro *RootOpts, args []string, dryRun, yes, allStale bool) error {
	info, err := hfcache.ScanCacheDir(ro.CacheDir)
	if err != nil {
		if errors.Is(err, hfcache.ErrInvalidCacheRoot) {
			return fmt.Errorf("invalid cache root %q: %w", ro.CacheDir, err)
		}
		return err
	}
	for _, w := range info.Warnings {
		ro.logger.Warn(w)
	}

	out := cmd.OutOrStdout()
	hashes := args

	if allStale {
		hashes = append(append([]string(nil), hashes...), staleRevisionHashes(info)...)
	}

	if len(hashes) == 0 {
		if !isInteractive() {
			return fmt.Errorf("no revisions given and stdin is not a terminal; pass revisions explicitly")
		}
		result, err := tui.RunRevisionPicker(info)
		if err != nil {
			return err
		}
		if result.Action != "delete" || len(result.Hashes) == 0 {
			fmt.Fprintln(out, "Nothing selected, aborting.")
			return nil
		}
		hashes = result.Hashes
	}

	plan := info.DeleteRevisions(ro.logger, hashes...)

	fmt.Fprintf(out, "Plan: %d blob(s), %d ref(s), %d snapshot(s), %d repo(s); will free %s.\n",
		len(plan.Blobs), len(plan.Refs), len(plan.Snapshots), len(plan.Repos), humanSize(plan.ExpectedFreedSize))

	if dryRun {
		return nil
	}

	if !yes && !confirm(cmd, "Proceed with deletion?") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	failures := plan.Execute(ro.logger)
	for i := 0; i < failures; i++ {
		ro.recorder.IncDeleteFailure()
	}
	ro.recorder.ObserveDeleteFreedBytes(plan.ExpectedFreedSize)
	fmt.Fprintf(out, "Done. Freed %s.\n", humanSize(plan.ExpectedFreedSize))
	return nil
}

// staleRevisionHashes returns the commit hash of every detached revision
// (one with no ref pointing to it) across every repo in info. These are the
// revisions --all-stale selects: once a ref stops pointing at a revision,
// nothing on disk can resolve it again, so it is never "the newest" for any
// ref and is always safe to offer up for deletion.
func staleRevisionHashes(info *hfcache.HFCacheInfo) []string {
	var hashes []string
	for _, repo := range info.Repos {
		for _, rev := range repo.Revisions {
			if len(rev.Refs) == 0 {
				hashes = append(hashes, rev.CommitHash)
			}
		}
	}
	return hashes
}

// isInteractive reports whether stdin is attached to a terminal, gating the
// interactive revision picker the way the teacher gates its own TUI
// entry points on golang.org/x/term.IsTerminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	switch line {
	case "y\n", "Y\n", "yes\n":
		return true
	default:
		return false
	}
}
