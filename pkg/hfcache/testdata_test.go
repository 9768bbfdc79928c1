// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"os"
	"path/filepath"
	"testing"
)

// buildRepo creates a single "models--org--name" repo directory under root
// with one blob shared across the given commit hashes (snapshot per hash,
// each containing one symlink to the shared blob, plus a distinct second
// blob per hash so revisions aren't byte-identical). refs maps ref name to
// the commit hash it should point at.
func buildRepo(t *testing.T, root, owner, name string, hashes []string, refs map[string]string) string {
	t.Helper()

	repoDir := filepath.Join(root, "models--"+owner+"--"+name)
	blobsDir := filepath.Join(repoDir, "blobs")
	snapshotsDir := filepath.Join(repoDir, "snapshots")
	refsDir := filepath.Join(repoDir, "refs")

	mustMkdirAll(t, blobsDir)
	mustMkdirAll(t, snapshotsDir)

	sharedBlob := filepath.Join(blobsDir, "sharedblob0000000000000000000000000000")
	mustWriteFile(t, sharedBlob, []byte("shared config content"))

	for _, hash := range hashes {
		snapDir := filepath.Join(snapshotsDir, hash)
		mustMkdirAll(t, snapDir)

		mustSymlink(t, sharedBlob, filepath.Join(snapDir, "config.json"))

		ownBlob := filepath.Join(blobsDir, "blob-"+hash)
		mustWriteFile(t, ownBlob, []byte("weights for "+hash))
		mustSymlink(t, ownBlob, filepath.Join(snapDir, "model.bin"))
	}

	if len(refs) > 0 {
		mustMkdirAll(t, refsDir)
		for refName, hash := range refs {
			mustWriteFile(t, filepath.Join(refsDir, refName), []byte(hash))
		}
	}

	return repoDir
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func mustSymlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink(%s -> %s): %v", link, target, err)
	}
}
