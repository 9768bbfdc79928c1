// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanCacheDir walks root and assembles an immutable report of every
// repository, revision, and file it finds. Malformed entries never abort
// the scan; they are recorded as warnings on the returned report and the
// affected repo is dropped.
func ScanCacheDir(root string) (*HFCacheInfo, error) {
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheRoot, root)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidCacheRoot, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read cache root: %w", err)
	}

	info := &HFCacheInfo{}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		if !entry.IsDir() {
			info.Warnings = append(info.Warnings, fmt.Sprintf("Repo path is not a directory: %s", path))
			continue
		}

		repoType, repoID, shapeOK, prefixKnown := parseRepoDirName(entry.Name())
		if !shapeOK {
			if !prefixKnown && strings.Contains(entry.Name(), "--") {
				prefix := strings.SplitN(entry.Name(), "--", 2)[0]
				info.Warnings = append(info.Warnings, fmt.Sprintf("Repo type must be `dataset`, `model` or `space`, found `%s` (%s).", prefix, path))
			} else {
				info.Warnings = append(info.Warnings, fmt.Sprintf("Repo path is not a valid HuggingFace cache directory: %s", path))
			}
			continue
		}

		repo, warning, err := scanRepo(path, repoType, repoID)
		if err != nil {
			info.Warnings = append(info.Warnings, warning)
			continue
		}

		info.Repos = append(info.Repos, *repo)
		info.SizeOnDisk += repo.SizeOnDisk
	}

	return info, nil
}

// scanRepo scans a single repo directory. On failure it returns a nil repo
// and the single warning string to record for it.
func scanRepo(repoPath string, repoType RepoType, repoID string) (*CachedRepo, string, error) {
	layout := &repoLayout{path: repoPath}
	snapshotsDir := layout.snapshotsDir()
	snapshotEntries, err := os.ReadDir(snapshotsDir)
	if err != nil {
		return nil, fmt.Sprintf("Snapshots dir doesn't exist in cached repo: %s", repoPath), err
	}

	revisions := make([]CachedRevision, 0, len(snapshotEntries))
	blobSizes := make(map[string]int64)
	var lastAccessed, lastModified int64

	for _, se := range snapshotEntries {
		if !se.IsDir() {
			return nil, fmt.Sprintf("Snapshots folder corrupted. Found a file: %s", filepath.Join(snapshotsDir, se.Name())), fmt.Errorf("stray file in snapshots dir")
		}

		commitHash := se.Name()
		snapshotDir := layout.snapshotDir(commitHash)

		rev, err := scanRevision(commitHash, snapshotDir, repoPath)
		if err != nil {
			return nil, fmt.Sprintf("Snapshots folder corrupted. Found a file: %s", snapshotDir), err
		}

		for path, size := range rev.BlobPaths() {
			blobSizes[path] = size
		}
		for _, f := range rev.Files {
			if at := f.BlobLastAccessed.Unix(); at > lastAccessed {
				lastAccessed = at
			}
			if mt := f.BlobLastModified.Unix(); mt > lastModified {
				lastModified = mt
			}
		}
		if rev.LastModified.Unix() > lastModified {
			lastModified = rev.LastModified.Unix()
		}

		revisions = append(revisions, rev)
	}

	refsByName, missing, err := scanRefs(repoPath, revisions)
	if err != nil {
		return nil, fmt.Sprintf("Refs dir couldn't be read in cached repo: %s (%v)", repoPath, err), err
	}
	if len(missing) > 0 {
		return nil, formatMissingRefsWarning(missing, repoPath), fmt.Errorf("refs point to missing commit hashes")
	}

	revByHash := make(map[string][]string, len(revisions))
	for refName, hash := range refsByName {
		revByHash[hash] = append(revByHash[hash], refName)
	}
	for i := range revisions {
		refs := revByHash[revisions[i].CommitHash]
		sort.Strings(refs)
		revisions[i].Refs = refs
	}

	var size int64
	for _, s := range blobSizes {
		size += s
	}

	repo := &CachedRepo{
		RepoID:       repoID,
		RepoType:     repoType,
		RepoPath:     repoPath,
		Revisions:    revisions,
		Refs:         refsByName,
		SizeOnDisk:   size,
		NbFiles:      len(blobSizes),
		LastAccessed: unixOrZero(lastAccessed),
		LastModified: unixOrZero(lastModified),
	}
	return repo, "", nil
}

// scanRevision walks one snapshot directory, following every symlink it
// contains to a blob under blobs/.
func scanRevision(commitHash, snapshotDir, repoPath string) (CachedRevision, error) {
	rev := CachedRevision{
		CommitHash:   commitHash,
		SnapshotPath: snapshotDir,
	}

	var size int64
	var lastModified int64

	err := filepath.Walk(snapshotDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		blobPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("resolve symlink %s: %w", path, err)
		}

		blobInfo, err := os.Stat(blobPath)
		if err != nil {
			return fmt.Errorf("stat blob %s: %w", blobPath, err)
		}

		atime, mtime := statTimes(blobInfo)

		rev.Files = append(rev.Files, CachedFile{
			FileName:         filepath.Base(path),
			FilePath:         path,
			BlobPath:         blobPath,
			SizeOnDisk:       blobInfo.Size(),
			BlobLastAccessed: atime,
			BlobLastModified: mtime,
		})

		size += blobInfo.Size()
		if mtime.Unix() > lastModified {
			lastModified = mtime.Unix()
		}
		return nil
	})
	if err != nil {
		return CachedRevision{}, err
	}

	rev.SizeOnDisk = size
	rev.NbFiles = len(rev.Files)
	rev.LastModified = unixOrZero(lastModified)
	return rev, nil
}

// scanRefs reads every ref file under repoPath/refs, returning a map of ref
// name -> commit hash. missing lists any referenced hash that doesn't match
// a scanned revision, paired with the ref names pointing at it.
func scanRefs(repoPath string, revisions []CachedRevision) (refsByName map[string]string, missing map[string][]string, err error) {
	refsByName = make(map[string]string)
	refsDir := (&repoLayout{path: repoPath}).refsDir()

	if _, err := os.Stat(refsDir); err != nil {
		return refsByName, nil, nil
	}

	known := make(map[string]bool, len(revisions))
	for _, rev := range revisions {
		known[rev.CommitHash] = true
	}

	walkErr := filepath.Walk(refsDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(refsDir, path)
		if err != nil {
			return err
		}
		refName := filepath.ToSlash(relPath)

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read ref %s: %w", path, err)
		}
		hash := strings.TrimSpace(string(content))
		refsByName[refName] = hash

		if !known[hash] {
			if missing == nil {
				missing = make(map[string][]string)
			}
			missing[hash] = append(missing[hash], refName)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	return refsByName, missing, nil
}

// formatMissingRefsWarning renders the exact warning string for refs
// pointing at commit hashes that don't match any scanned revision.
func formatMissingRefsWarning(missing map[string][]string, repoPath string) string {
	hashes := make([]string, 0, len(missing))
	for h := range missing {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var parts []string
	for _, h := range hashes {
		refs := append([]string(nil), missing[h]...)
		sort.Strings(refs)
		parts = append(parts, fmt.Sprintf("%s: {%s}", h, strings.Join(refs, ", ")))
	}

	return fmt.Sprintf("Reference(s) refer to missing commit hashes: {%s} (%s).", strings.Join(parts, ", "), repoPath)
}
