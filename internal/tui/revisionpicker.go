// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfcache"
)

// RevisionPickerResult is what the user chose in the interactive picker.
type RevisionPickerResult struct {
	// Action is "delete", "copy", or "cancel".
	Action string

	// Hashes is the commit hashes selected for deletion.
	Hashes []string

	// FreedBytes is the size the current plan would free, for display
	// after the picker returns.
	FreedBytes int64
}

// repoGroup groups a repo's revisions for display.
type repoGroup struct {
	Repo  hfcache.CachedRepo
	Items []revisionState
}

// revisionState tracks one revision's selection state alongside its
// flat index for cursor tracking.
type revisionState struct {
	Repo     hfcache.CachedRepo
	Revision hfcache.CachedRevision
	Selected bool
	Index    int
}

// RevisionPickerModel is the bubbletea model for interactively choosing
// which cached revisions to delete.
type RevisionPickerModel struct {
	info *hfcache.HFCacheInfo

	groups   []repoGroup
	allItems []revisionState

	cursor    int
	maxCursor int

	result RevisionPickerResult
	done   bool
}

// NewRevisionPickerModel builds a picker over every revision in info.
func NewRevisionPickerModel(info *hfcache.HFCacheInfo) *RevisionPickerModel {
	m := &RevisionPickerModel{info: info}

	globalIdx := 0
	for _, repo := range info.Repos {
		group := repoGroup{Repo: repo}
		for _, rev := range repo.Revisions {
			state := revisionState{Repo: repo, Revision: rev, Index: globalIdx}
			group.Items = append(group.Items, state)
			m.allItems = append(m.allItems, state)
			globalIdx++
		}
		m.groups = append(m.groups, group)
	}

	m.maxCursor = len(m.allItems) - 1
	if m.maxCursor < 0 {
		m.maxCursor = 0
	}

	return m
}

func (m *RevisionPickerModel) Init() tea.Cmd { return nil }

func (m *RevisionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		m.result.Action = "cancel"
		m.done = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < m.maxCursor {
			m.cursor++
		}

	case " ":
		m.toggleCurrent()

	case "a":
		m.selectAll(true)

	case "n":
		m.selectAll(false)

	case "enter":
		m.result.Action = "delete"
		m.result.Hashes = m.selectedHashes()
		m.result.FreedBytes = m.previewPlan().ExpectedFreedSize
		m.done = true
		return m, tea.Quit

	case "c":
		hashes := m.selectedHashes()
		if err := clipboard.WriteAll(strings.Join(hashes, "\n")); err == nil {
			m.result.Action = "copy"
			m.result.Hashes = hashes
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *RevisionPickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("Select revisions to delete") + "\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d repo(s), %d revision(s) cached", len(m.info.Repos), len(m.allItems))) + "\n\n")

	for _, group := range m.groups {
		b.WriteString(CategoryStyle.Render(FormatCategoryTitle(string(group.Repo.RepoType))+": "+group.Repo.RepoID) + "\n\n")

		for _, state := range group.Items {
			live := m.allItems[state.Index]

			cursor := "  "
			if m.cursor == state.Index {
				cursor = CursorStyle.Render("> ")
			}

			checkbox := RenderCheckbox(live.Selected)
			label := shortHash(state.Revision.CommitHash)
			if len(state.Revision.Refs) > 0 {
				label += " (" + strings.Join(state.Revision.Refs, ", ") + ")"
			} else {
				label += " (detached)"
			}

			size := SizeLabelStyle.Render(humanSize(state.Revision.SizeOnDisk))

			line := fmt.Sprintf("%s%s %s  %s", cursor, checkbox, label, size)
			if m.cursor == state.Index {
				line = SelectedItemStyle.Render(line)
			} else {
				line = ItemStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	plan := m.previewPlan()
	selectedCount := len(m.selectedHashes())
	summary := SummaryLabelStyle.Render("Selected: ") +
		SummaryValueStyle.Render(fmt.Sprintf("%d revision(s)", selectedCount)) +
		SummaryLabelStyle.Render(" • will free ") +
		SummaryValueStyle.Render(humanSize(plan.ExpectedFreedSize))
	b.WriteString(summary + "\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *RevisionPickerModel) toggleCurrent() {
	if m.cursor < 0 || m.cursor >= len(m.allItems) {
		return
	}
	m.allItems[m.cursor].Selected = !m.allItems[m.cursor].Selected
}

func (m *RevisionPickerModel) selectAll(selected bool) {
	for i := range m.allItems {
		m.allItems[i].Selected = selected
	}
}

func (m *RevisionPickerModel) selectedHashes() []string {
	var hashes []string
	for _, item := range m.allItems {
		if item.Selected {
			hashes = append(hashes, item.Revision.CommitHash)
		}
	}
	return hashes
}

// previewPlan recomputes the DeletionPlan for the current selection so the
// running "bytes to free" total always reflects blob-sharing rules, not a
// naive sum of revision sizes.
func (m *RevisionPickerModel) previewPlan() *hfcache.DeletionPlan {
	return m.info.DeleteRevisions(nil, m.selectedHashes()...)
}

func (m *RevisionPickerModel) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"↑↓", "navigate"},
		{"space", "toggle"},
		{"a", "all"},
		{"n", "none"},
		{"enter", "delete"},
		{"c", "copy hashes"},
		{"q", "cancel"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, HelpKeyStyle.Render(k.key)+" "+HelpStyle.Render(k.desc))
	}
	return FooterStyle.Render(strings.Join(parts, " • "))
}

// RunRevisionPicker runs the interactive picker over info's revisions.
func RunRevisionPicker(info *hfcache.HFCacheInfo) (*RevisionPickerResult, error) {
	total := 0
	for _, repo := range info.Repos {
		total += len(repo.Revisions)
	}
	if total == 0 {
		return nil, fmt.Errorf("no cached revisions found")
	}

	model := NewRevisionPickerModel(info)
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run revision picker: %w", err)
	}

	m := finalModel.(*RevisionPickerModel)
	return &m.result, nil
}

// humanSize converts bytes to a binary-unit human readable size, matching
// the picker's own size column (distinct from the CLI table's decimal SI
// rendering, which is a display nuance of the plain table, not the picker).
func humanSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

var _ tea.Model = (*RevisionPickerModel)(nil)
