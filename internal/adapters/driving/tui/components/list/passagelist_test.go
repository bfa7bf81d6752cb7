package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

func testPassages() []domain.ScoredChunk {
	doc := &domain.Document{ID: "doc-1", Title: "Handbook", URI: "/docs/handbook.pdf", Kind: domain.SourceKindPDF}
	return []domain.ScoredChunk{
		{
			Chunk:      &domain.Chunk{ID: "c1", DocumentID: "doc-1", Content: "Employees accrue leave monthly.", PageNumber: 2},
			Document:   doc,
			Slot:       4,
			Distance:   0.2,
			Similarity: 0.8,
		},
		{
			Chunk:      &domain.Chunk{ID: "c2", DocumentID: "doc-1", Content: "Unused leave\ncarries over.", PageNumber: 3},
			Document:   doc,
			Slot:       5,
			Distance:   0.5,
			Similarity: 0.5,
		},
	}
}

func TestNewPassageList(t *testing.T) {
	l := NewPassageList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.Zero(t, l.Count())
	assert.Nil(t, l.SelectedPassage())
	assert.Nil(t, l.Init())
}

func TestPassageList_EmptyView(t *testing.T) {
	l := NewPassageList(nil)

	assert.Contains(t, l.View(), "No passages")
}

func TestPassageList_ViewShowsCitationsAndScores(t *testing.T) {
	l := NewPassageList(nil)
	l.SetDimensions(120, 20)
	l.SetPassages(testPassages())

	view := l.View()

	assert.Contains(t, view, "Passages (2)")
	assert.Contains(t, view, "Page 2")
	assert.Contains(t, view, "0.800")
	assert.Contains(t, view, "Employees accrue leave monthly.")
}

func TestPassageList_Navigation(t *testing.T) {
	l := NewPassageList(nil)
	l.SetPassages(testPassages())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, l.Selected())

	l.MoveDown()
	assert.Equal(t, 1, l.Selected(), "selection stops at the last passage")

	l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, "c1", l.SelectedPassage().Chunk.ID)
}

func TestPassageList_SetPassagesResetsSelection(t *testing.T) {
	l := NewPassageList(nil)
	l.SetPassages(testPassages())
	l.MoveDown()

	l.SetPassages(testPassages()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Len(t, l.Passages(), 1)
}

func TestPassageList_MissingChunkFallsBackToSlot(t *testing.T) {
	l := NewPassageList(nil)
	l.SetDimensions(120, 20)
	l.SetPassages([]domain.ScoredChunk{{Slot: 9, Similarity: 0.1}})

	assert.Contains(t, l.View(), "slot 9")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3)[:20], 10))
}
