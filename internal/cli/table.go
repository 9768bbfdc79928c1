// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"
)

// sortRepos sorts repos in place by the requested key: "size", "date", or
// (default) "name". Callers that need the original order pass a copy.
func sortRepos(repos []hfcache.CachedRepo, by string) {
	switch by {
	case "size":
		sort.Slice(repos, func(i, j int) bool { return repos[i].SizeOnDisk > repos[j].SizeOnDisk })
	case "date":
		sort.Slice(repos, func(i, j int) bool { return repos[i].LastModified.After(repos[j].LastModified) })
	default:
		sort.Slice(repos, func(i, j int) bool { return repos[i].RepoID < repos[j].RepoID })
	}
}

// humanSize renders bytes with one decimal and an SI suffix (K, M, G),
// e.g. 3547 -> "3.5K". Sub-kilobyte values print as a bare byte count.
func humanSize(bytes int64) string {
	const unit = 1000.0
	if bytes < 1000 {
		return fmt.Sprintf("%dB", bytes)
	}
	div, suffix := unit, "K"
	switch {
	case bytes >= int64(unit*unit*unit):
		div, suffix = unit*unit*unit, "G"
	case bytes >= int64(unit*unit):
		div, suffix = unit*unit, "M"
	}
	return fmt.Sprintf("%.1f%s", float64(bytes)/div, suffix)
}

// printReport renders info to w as the quiet or verbose table described by
// the report surface: REPO ID | REPO TYPE | [REVISION] | SIZE ON DISK |
// NB FILES | REFS | LOCAL PATH, column widths sized to content, followed by
// a bold-red summary footer.
func printReport(w io.Writer, info *hfcache.HFCacheInfo, sortBy string, verbose bool, elapsed time.Duration) {
	repos := append([]hfcache.CachedRepo(nil), info.Repos...)
	sortRepos(repos, sortBy)

	var headers []string
	if verbose {
		headers = []string{"REPO ID", "REPO TYPE", "REVISION", "SIZE ON DISK", "NB FILES", "REFS", "LOCAL PATH"}
	} else {
		headers = []string{"REPO ID", "REPO TYPE", "SIZE ON DISK", "NB FILES", "REFS", "LOCAL PATH"}
	}

	var rows [][]string
	for _, repo := range repos {
		refs := strings.Join(repo.SortedRefNames(), ", ")

		if !verbose {
			rows = append(rows, []string{
				repo.RepoID, string(repo.RepoType), humanSize(repo.SizeOnDisk),
				fmt.Sprintf("%d", repo.NbFiles), refs, repo.RepoPath,
			})
			continue
		}

		revisions := append([]hfcache.CachedRevision(nil), repo.Revisions...)
		sort.Slice(revisions, func(i, j int) bool { return revisions[i].CommitHash < revisions[j].CommitHash })
		for _, rev := range revisions {
			rows = append(rows, []string{
				repo.RepoID, string(repo.RepoType), shortHash(rev.CommitHash),
				humanSize(rev.SizeOnDisk), fmt.Sprintf("%d", rev.NbFiles),
				strings.Join(rev.Refs, ", "), repo.RepoPath,
			})
		}
	}

	widths := columnWidths(headers, rows)
	printRow(w, headers, widths)
	for _, row := range rows {
		printRow(w, row, widths)
	}

	fmt.Fprintf(w, "\nDone in %.1fs. Scanned %d repo(s) for a total of %s.\n",
		elapsed.Seconds(), len(info.Repos), boldRed(humanSize(info.SizeOnDisk)))
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func boldRed(s string) string {
	return "\x1b[1m\x1b[31m" + s + "\x1b[0m"
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}
