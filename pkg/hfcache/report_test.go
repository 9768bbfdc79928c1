// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import "testing"

func TestCachedRepo_SortedRefNames(t *testing.T) {
	repo := CachedRepo{Refs: map[string]string{
		"main":      "hash1",
		"alpha":     "hash2",
		"zeta-beta": "hash3",
	}}

	got := repo.SortedRefNames()
	want := []string{"alpha", "main", "zeta-beta"}

	if len(got) != len(want) {
		t.Fatalf("SortedRefNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedRefNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCachedRepo_RevisionByHash(t *testing.T) {
	repo := CachedRepo{Revisions: []CachedRevision{
		{CommitHash: "hash1"},
		{CommitHash: "hash2"},
	}}

	rev, ok := repo.RevisionByHash("hash2")
	if !ok || rev.CommitHash != "hash2" {
		t.Errorf("RevisionByHash(hash2) = (%v, %v), want (hash2, true)", rev, ok)
	}

	_, ok = repo.RevisionByHash("missing")
	if ok {
		t.Errorf("RevisionByHash(missing) = ok, want not found")
	}
}

func TestHFCacheInfo_RevisionByHash(t *testing.T) {
	info := HFCacheInfo{Repos: []CachedRepo{
		{RepoID: "acme/a", Revisions: []CachedRevision{{CommitHash: "hashA"}}},
		{RepoID: "acme/b", Revisions: []CachedRevision{{CommitHash: "hashB"}}},
	}}

	repo, rev, ok := info.RevisionByHash("hashB")
	if !ok || repo.RepoID != "acme/b" || rev.CommitHash != "hashB" {
		t.Errorf("RevisionByHash(hashB) = (%v, %v, %v), want acme/b repo and hashB revision", repo, rev, ok)
	}
}

func TestHFCacheInfo_Walk(t *testing.T) {
	info := HFCacheInfo{Repos: []CachedRepo{
		{
			RepoID: "acme/a",
			Revisions: []CachedRevision{
				{CommitHash: "hash1", Files: []CachedFile{{FileName: "f1"}, {FileName: "f2"}}},
			},
		},
	}}

	var names []string
	info.Walk(func(repo CachedRepo, rev CachedRevision, file CachedFile) {
		names = append(names, repo.RepoID+"/"+rev.CommitHash+"/"+file.FileName)
	})

	want := []string{"acme/a/hash1/f1", "acme/a/hash1/f2"}
	if len(names) != len(want) {
		t.Fatalf("Walk visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCachedRevision_BlobPaths(t *testing.T) {
	rev := CachedRevision{Files: []CachedFile{
		{BlobPath: "/blobs/a", SizeOnDisk: 10},
		{BlobPath: "/blobs/b", SizeOnDisk: 20},
		{BlobPath: "/blobs/a", SizeOnDisk: 10}, // same file linked twice, same blob
	}}

	got := rev.BlobPaths()
	if len(got) != 2 {
		t.Fatalf("BlobPaths() = %v, want 2 distinct entries", got)
	}
	if got["/blobs/a"] != 10 || got["/blobs/b"] != 20 {
		t.Errorf("BlobPaths() = %v, want {/blobs/a:10, /blobs/b:20}", got)
	}
}
