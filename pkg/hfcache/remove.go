// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
)

// TryDeletePath removes path (recursively, if it is a directory) and never
// returns an error. Well-known failures (missing path, permission denied)
// are logged as warnings at logger; anything else is logged too, with a
// generic diagnostic tail, rather than propagated. It reports whether the
// path was actually removed, so callers that track metrics can count
// failures without parsing log output.
func TryDeletePath(logger *slog.Logger, path string, pathType string) bool {
	fi, err := os.Lstat(path)
	if err == nil {
		if fi.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err == nil {
			return true
		}
	}
	if logger == nil {
		return false
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn(fmt.Sprintf("Couldn't delete %s: file not found (%s)\n%s", pathType, path, string(debug.Stack())))
	case errors.Is(err, os.ErrPermission):
		logger.Warn(fmt.Sprintf("Couldn't delete %s: permission denied (%s)\n%s", pathType, path, string(debug.Stack())))
	default:
		logger.Warn(fmt.Sprintf("Couldn't delete %s: %s (%s)\n%s", pathType, err, path, string(debug.Stack())))
	}
	return false
}

// Execute drives the Path Remover over every path in the plan, in an order
// that's safe against partial failure: blobs, then snapshots, then refs,
// then whole repos last (so a crash mid-run still leaves an inspectable
// cache rather than a half-deleted repo directory). It returns the number
// of paths that failed to delete.
func (p *DeletionPlan) Execute(logger *slog.Logger) int {
	failures := 0
	remove := func(path, pathType string) {
		if !TryDeletePath(logger, path, pathType) {
			failures++
		}
	}
	for _, path := range p.BlobPaths() {
		remove(path, "blob")
	}
	for _, path := range p.SnapshotPaths() {
		remove(path, "snapshot")
	}
	for _, path := range p.RefPaths() {
		remove(path, "ref")
	}
	for _, path := range p.RepoPaths() {
		remove(path, "repo")
	}
	return failures
}
