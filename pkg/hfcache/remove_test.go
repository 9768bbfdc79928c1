// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTryDeletePath_RemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	mustWriteFile(t, path, []byte("x"))

	TryDeletePath(nil, path, "blob")

	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after TryDeletePath, err = %v", err)
	}
}

func TestTryDeletePath_RemovesDirectoryRecursively(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "snapshot")
	mustMkdirAll(t, filepath.Join(snapshot, "nested"))
	mustWriteFile(t, filepath.Join(snapshot, "nested", "f.txt"), []byte("x"))

	TryDeletePath(nil, snapshot, "snapshot")

	if _, err := os.Lstat(snapshot); !os.IsNotExist(err) {
		t.Errorf("directory still exists after TryDeletePath, err = %v", err)
	}
}

func TestTryDeletePath_MissingPathWarnsButNeverPanics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist")

	var warnings []string
	logger := newTestLogger(&warnings)

	TryDeletePath(logger, path, "blob")

	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
	wantPrefix := "Couldn't delete blob: file not found (" + path + ")"
	if len(warnings[0]) < len(wantPrefix) || warnings[0][:len(wantPrefix)] != wantPrefix {
		t.Errorf("warning = %q, want prefix %q", warnings[0], wantPrefix)
	}
}

func TestTryDeletePath_PermissionDeniedWarnsAndLeavesDirInPlace(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root bypasses Unix permission checks")
	}

	dir := t.TempDir()
	protected := filepath.Join(dir, "snapshot")
	mustMkdirAll(t, protected)
	mustWriteFile(t, filepath.Join(protected, "file.txt"), []byte("x"))

	if err := os.Chmod(protected, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() {
		os.Chmod(protected, 0o755)
	})

	var warnings []string
	logger := newTestLogger(&warnings)

	TryDeletePath(logger, protected, "snapshot")

	if _, err := os.Lstat(protected); err != nil {
		t.Errorf("protected dir should survive a permission-denied delete, but Lstat failed: %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
	wantPrefix := "Couldn't delete snapshot: permission denied (" + protected + ")"
	if len(warnings[0]) < len(wantPrefix) || warnings[0][:len(wantPrefix)] != wantPrefix {
		t.Errorf("warning = %q, want prefix %q", warnings[0], wantPrefix)
	}
}

func TestTryDeletePath_NilLoggerNeverPanics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist")

	// Must not panic even though no logger is supplied.
	TryDeletePath(nil, path, "blob")
}

func TestDeletionPlan_ExecuteRemovesEveryPlannedPath(t *testing.T) {
	root := t.TempDir()
	buildRepo(t, root, "acme", "widget", []string{"hash1", "hash2"}, map[string]string{
		"main": "hash2",
	})

	info, err := ScanCacheDir(root)
	if err != nil {
		t.Fatalf("ScanCacheDir: %v", err)
	}

	plan := info.DeleteRevisions(nil, "hash1")
	if failures := plan.Execute(nil); failures != 0 {
		t.Fatalf("Execute() failures = %d, want 0", failures)
	}

	for _, path := range plan.BlobPaths() {
		if _, err := os.Lstat(path); !os.IsNotExist(err) {
			t.Errorf("blob %s still exists after Execute", path)
		}
	}
	for _, path := range plan.SnapshotPaths() {
		if _, err := os.Lstat(path); !os.IsNotExist(err) {
			t.Errorf("snapshot %s still exists after Execute", path)
		}
	}

	// hash2's snapshot and the shared blob must survive.
	repo := info.Repos[0]
	hash2Snapshot := repo.Revisions[0].SnapshotPath
	if repo.Revisions[0].CommitHash != "hash2" {
		hash2Snapshot = repo.Revisions[1].SnapshotPath
	}
	if _, err := os.Lstat(hash2Snapshot); err != nil {
		t.Errorf("hash2's snapshot should survive a hash1-only delete: %v", err)
	}
}

func TestDeletionPlan_ExecuteFullRepoRemovesRepoDir(t *testing.T) {
	root := t.TempDir()
	repoDir := buildRepo(t, root, "acme", "widget", []string{"hash1"}, nil)

	info, err := ScanCacheDir(root)
	if err != nil {
		t.Fatalf("ScanCacheDir: %v", err)
	}

	plan := info.DeleteRevisions(nil, "hash1")
	if failures := plan.Execute(nil); failures != 0 {
		t.Fatalf("Execute() failures = %d, want 0", failures)
	}

	if _, err := os.Lstat(repoDir); !os.IsNotExist(err) {
		t.Errorf("repo dir %s still exists after Execute", repoDir)
	}
}

func TestDeletionPlan_ExecuteCountsAlreadyMissingPathsAsFailures(t *testing.T) {
	root := t.TempDir()
	// Two revisions so deleting hash1 alone is a partial delete, which
	// plans hash1's own blob individually rather than folding it into a
	// whole-repo-directory removal.
	buildRepo(t, root, "acme", "widget", []string{"hash1", "hash2"}, nil)

	info, err := ScanCacheDir(root)
	if err != nil {
		t.Fatalf("ScanCacheDir: %v", err)
	}

	plan := info.DeleteRevisions(nil, "hash1")
	if len(plan.Blobs) == 0 {
		t.Fatal("expected a partial-delete plan to enumerate individual blobs")
	}

	// Simulate a path already removed out-of-band before Execute runs.
	for path := range plan.Blobs {
		if err := os.RemoveAll(path); err != nil {
			t.Fatalf("pre-removing %s: %v", path, err)
		}
		break
	}

	if failures := plan.Execute(nil); failures == 0 {
		t.Errorf("Execute() failures = 0, want at least 1 for the pre-removed blob")
	}
}
