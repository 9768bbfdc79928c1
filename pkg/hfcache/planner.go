// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// DeletionPlan enumerates exactly which filesystem paths a delete request
// would remove, and how many bytes that is expected to free. It is a plain
// value: building one never touches the filesystem.
type DeletionPlan struct {
	ExpectedFreedSize int64
	Blobs             map[string]struct{}
	Refs              map[string]struct{}
	Repos             map[string]struct{}
	Snapshots         map[string]struct{}
}

func newDeletionPlan() *DeletionPlan {
	return &DeletionPlan{
		Blobs:     make(map[string]struct{}),
		Refs:      make(map[string]struct{}),
		Repos:     make(map[string]struct{}),
		Snapshots: make(map[string]struct{}),
	}
}

// BlobPaths, RefPaths, RepoPaths, and SnapshotPaths return the plan's path
// sets as sorted slices, for display and for deterministic execution order
// within a single category.
func (p *DeletionPlan) BlobPaths() []string     { return sortedKeys(p.Blobs) }
func (p *DeletionPlan) RefPaths() []string      { return sortedKeys(p.Refs) }
func (p *DeletionPlan) RepoPaths() []string     { return sortedKeys(p.Repos) }
func (p *DeletionPlan) SnapshotPaths() []string { return sortedKeys(p.Snapshots) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DeleteRevisions computes the DeletionPlan for removing the revisions
// identified by hashes. Unknown hashes are logged as one warning and
// silently dropped rather than failing the whole call.
func (info *HFCacheInfo) DeleteRevisions(logger *slog.Logger, hashes ...string) *DeletionPlan {
	plan := newDeletionPlan()

	type resolved struct {
		repo CachedRepo
		rev  CachedRevision
	}

	byRepo := make(map[string][]resolved)
	var unknown []string

	for _, hash := range hashes {
		repo, rev, ok := info.RevisionByHash(hash)
		if !ok {
			unknown = append(unknown, hash)
			continue
		}
		byRepo[repo.RepoPath] = append(byRepo[repo.RepoPath], resolved{repo: repo, rev: rev})
	}

	if len(unknown) > 0 && logger != nil {
		sort.Strings(unknown)
		logger.Warn(fmt.Sprintf("Revision(s) not found - cannot delete them: %s", strings.Join(unknown, ", ")))
	}

	for _, group := range byRepo {
		repo := group[0].repo

		toDelete := make(map[string]bool, len(group))
		for _, g := range group {
			toDelete[g.rev.CommitHash] = true
		}

		remaining := 0
		for _, rev := range repo.Revisions {
			if !toDelete[rev.CommitHash] {
				remaining++
			}
		}

		if remaining == 0 {
			plan.Repos[repo.RepoPath] = struct{}{}
			plan.ExpectedFreedSize += repo.SizeOnDisk
			continue
		}

		keptBlobs := make(map[string]struct{})
		for _, rev := range repo.Revisions {
			if toDelete[rev.CommitHash] {
				continue
			}
			for bp := range rev.BlobPaths() {
				keptBlobs[bp] = struct{}{}
			}
		}

		for _, g := range group {
			for bp, size := range g.rev.BlobPaths() {
				if _, kept := keptBlobs[bp]; kept {
					continue
				}
				if _, already := plan.Blobs[bp]; already {
					continue
				}
				plan.Blobs[bp] = struct{}{}
				plan.ExpectedFreedSize += size
			}

			plan.Snapshots[g.rev.SnapshotPath] = struct{}{}

			for _, refName := range g.rev.Refs {
				plan.Refs[refFilePath(repo.RepoPath, refName)] = struct{}{}
			}
		}
	}

	return plan
}

// refFilePath reconstructs a ref file's on-disk path from a repo path and a
// ref name, turning the ref name's slashes into path separators.
func refFilePath(repoPath, refName string) string {
	return filepath.Join(repoPath, "refs", filepath.FromSlash(refName))
}
