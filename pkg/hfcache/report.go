// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"sort"
	"time"
)

// CachedFile is a single file inside a cached revision: a symlink under a
// snapshot directory pointing at a content-addressed blob.
type CachedFile struct {
	FileName         string    `json:"fileName"`
	FilePath         string    `json:"filePath"`
	BlobPath         string    `json:"blobPath"`
	SizeOnDisk       int64     `json:"sizeOnDisk"`
	BlobLastAccessed time.Time `json:"blobLastAccessed"`
	BlobLastModified time.Time `json:"blobLastModified"`
}

// CachedRevision is one snapshot (commit) of a repository.
type CachedRevision struct {
	CommitHash   string       `json:"commitHash"`
	SnapshotPath string       `json:"snapshotPath"`
	Files        []CachedFile `json:"files"`
	Refs         []string     `json:"refs"`
	SizeOnDisk   int64        `json:"sizeOnDisk"`
	NbFiles      int          `json:"nbFiles"`
	LastModified time.Time    `json:"lastModified"`
}

// BlobPaths returns the distinct blob paths reachable from this revision.
func (r CachedRevision) BlobPaths() map[string]int64 {
	out := make(map[string]int64, len(r.Files))
	for _, f := range r.Files {
		out[f.BlobPath] = f.SizeOnDisk
	}
	return out
}

// CachedRepo is a single repository directory in the cache.
type CachedRepo struct {
	RepoID       string            `json:"repoId"`
	RepoType     RepoType          `json:"repoType"`
	RepoPath     string            `json:"repoPath"`
	Revisions    []CachedRevision  `json:"revisions"`
	Refs         map[string]string `json:"refs"` // ref name -> commit hash
	SizeOnDisk   int64             `json:"sizeOnDisk"`
	NbFiles      int               `json:"nbFiles"`
	LastAccessed time.Time         `json:"lastAccessed"`
	LastModified time.Time         `json:"lastModified"`
}

// RevisionByHash returns the revision with the given commit hash, if any.
func (repo CachedRepo) RevisionByHash(hash string) (CachedRevision, bool) {
	for _, rev := range repo.Revisions {
		if rev.CommitHash == hash {
			return rev, true
		}
	}
	return CachedRevision{}, false
}

// SortedRefNames returns the repo's ref names in alphabetical order.
func (repo CachedRepo) SortedRefNames() []string {
	names := make([]string, 0, len(repo.Refs))
	for name := range repo.Refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HFCacheInfo is the full, immutable report produced by a scan.
type HFCacheInfo struct {
	SizeOnDisk int64        `json:"sizeOnDisk"`
	Repos      []CachedRepo `json:"repos"`
	Warnings   []string     `json:"warnings"`
}

// RevisionByHash looks up a revision by commit hash across every repo in
// the report, returning the owning repo alongside it.
func (info HFCacheInfo) RevisionByHash(hash string) (CachedRepo, CachedRevision, bool) {
	for _, repo := range info.Repos {
		if rev, ok := repo.RevisionByHash(hash); ok {
			return repo, rev, true
		}
	}
	return CachedRepo{}, CachedRevision{}, false
}

// Walk calls fn once per (repo, revision, file) triple in the report, in
// repo/revision/file order. It exists so callers don't need to build a
// flattened slice just to iterate once.
func (info HFCacheInfo) Walk(fn func(repo CachedRepo, rev CachedRevision, file CachedFile)) {
	for _, repo := range info.Repos {
		for _, rev := range repo.Revisions {
			for _, f := range rev.Files {
				fn(repo, rev, f)
			}
		}
	}
}
