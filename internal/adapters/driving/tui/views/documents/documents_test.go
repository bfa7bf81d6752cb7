package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kassist/internal/core/domain"
)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs    []domain.Document
	listErr error
}

func (m *mockDocumentService) Submit(
	_ context.Context, _ *domain.RawDocument,
) (*domain.Document, *domain.IngestReport, error) {
	return nil, nil, errors.New("not used")
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.listErr
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func testDocs() []domain.Document {
	return []domain.Document{
		{ID: "doc-1", Title: "Handbook", URI: "/docs/handbook.pdf", Kind: domain.SourceKindPDF},
		{ID: "doc-2", Title: "Notes", URI: "/docs/notes.md", Kind: domain.SourceKindMarkdown},
	}
}

func loadedView(t *testing.T, svc *mockDocumentService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(120, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestView_InitLoadsDocuments(t *testing.T) {
	v := loadedView(t, &mockDocumentService{docs: testDocs()})

	assert.Len(t, v.Documents(), 2)
	assert.NoError(t, v.Err())

	view := v.View()
	assert.Contains(t, view, "Documents (2)")
	assert.Contains(t, view, "Handbook")
	assert.Contains(t, view, "markdown")
}

func TestView_NilServiceReportsError(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)

	msg := v.Init()()
	loaded, ok := msg.(messages.DocumentsLoaded)
	require.True(t, ok)
	assert.ErrorIs(t, loaded.Err, ErrNoDocumentService)
}

func TestView_ListError(t *testing.T) {
	v := loadedView(t, &mockDocumentService{listErr: errors.New("db locked")})

	assert.EqualError(t, v.Err(), "db locked")
	assert.Contains(t, v.View(), "Error: db locked")
}

func TestView_EmptyState(t *testing.T) {
	v := loadedView(t, &mockDocumentService{})

	assert.Contains(t, v.View(), "kassist ingest")
}

func TestView_NavigationAndSelect(t *testing.T) {
	v := loadedView(t, &mockDocumentService{docs: testDocs()})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, "doc-2", selected.Document.ID)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_EnterOnEmptyListDoesNothing(t *testing.T) {
	v := loadedView(t, &mockDocumentService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Nil(t, v.SelectedDocument())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := loadedView(t, &mockDocumentService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ReloadReturnsCommand(t *testing.T) {
	svc := &mockDocumentService{}
	v := loadedView(t, svc)
	svc.docs = testDocs()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Len(t, v.Documents(), 2)
}
