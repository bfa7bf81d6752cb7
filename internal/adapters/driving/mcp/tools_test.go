package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

func newTestServer(t *testing.T, answer *mockAnswerService, docs *mockDocumentService) *Server {
	t.Helper()
	ports := &Ports{Answer: answer}
	if docs != nil {
		ports.Document = docs
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and citations", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Question:  "What is alpha?",
			Text:      "Alpha is the first letter.",
			Citations: []string{"guide.md - Page 1", "guide.md - Page 3"},
		}}
		server := newTestServer(t, answer, nil)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What is alpha?"})

		require.NoError(t, err)
		assert.Equal(t, "What is alpha?", answer.question)
		assert.Equal(t, "Alpha is the first letter.", output.Answer)
		assert.Equal(t, []string{"guide.md - Page 1", "guide.md - Page 3"}, output.Citations)
		assert.False(t, output.NoKnowledge)
	})

	t.Run("empty knowledge base is not an error", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Text:        domain.NoKnowledgeAnswer,
			NoKnowledge: true,
		}}
		server := newTestServer(t, answer, nil)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "anything"})

		require.NoError(t, err)
		assert.True(t, output.NoKnowledge)
		assert.Equal(t, domain.NoKnowledgeAnswer, output.Answer)
		assert.NotNil(t, output.Citations)
		assert.Empty(t, output.Citations)
	})

	t.Run("propagates generation failures", func(t *testing.T) {
		answer := &mockAnswerService{err: domain.ErrGenerationTimeout}
		server := newTestServer(t, answer, nil)

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrGenerationTimeout)
	})
}

func TestServer_handleSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("inline content defaults to plaintext", func(t *testing.T) {
		docs := &mockDocumentService{report: &domain.IngestReport{Passages: 2, Indexed: 2}}
		server := newTestServer(t, &mockAnswerService{}, docs)

		_, output, err := server.handleSubmit(ctx, nil, SubmitInput{Content: "one\n\ntwo"})

		require.NoError(t, err)
		require.NotNil(t, docs.submitted)
		assert.Equal(t, domain.SourceKindPlaintext, docs.submitted.Kind)
		assert.Equal(t, "one\n\ntwo", string(docs.submitted.Content))
		assert.Equal(t, "doc-new", output.DocumentID)
		assert.Equal(t, 2, output.Indexed)
	})

	t.Run("inline markdown keeps title", func(t *testing.T) {
		docs := &mockDocumentService{}
		server := newTestServer(t, &mockAnswerService{}, docs)

		_, output, err := server.handleSubmit(ctx, nil, SubmitInput{
			Content: "# Notes\n\nBody",
			Kind:    "markdown",
			Title:   "Meeting notes",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.SourceKindMarkdown, docs.submitted.Kind)
		assert.Equal(t, "Meeting notes", output.Title)
	})

	t.Run("reads file from path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "guide.md")
		require.NoError(t, os.WriteFile(path, []byte("# Guide\n\nText"), 0o600))

		docs := &mockDocumentService{}
		server := newTestServer(t, &mockAnswerService{}, docs)

		_, _, err := server.handleSubmit(ctx, nil, SubmitInput{Path: path})

		require.NoError(t, err)
		assert.Equal(t, domain.SourceKindMarkdown, docs.submitted.Kind)
		assert.Equal(t, path, docs.submitted.URI)
	})

	t.Run("missing input", func(t *testing.T) {
		server := newTestServer(t, &mockAnswerService{}, &mockDocumentService{})

		_, _, err := server.handleSubmit(ctx, nil, SubmitInput{Content: "   "})

		assert.ErrorIs(t, err, ErrMissingDocumentInput)
	})

	t.Run("inline pdf is rejected", func(t *testing.T) {
		server := newTestServer(t, &mockAnswerService{}, &mockDocumentService{})

		_, _, err := server.handleSubmit(ctx, nil, SubmitInput{Content: "%PDF", Kind: "pdf"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("unknown inline kind is rejected", func(t *testing.T) {
		server := newTestServer(t, &mockAnswerService{}, &mockDocumentService{})

		_, _, err := server.handleSubmit(ctx, nil, SubmitInput{Content: "x", Kind: "docx"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("submit failure", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("disk full")}
		server := newTestServer(t, &mockAnswerService{}, docs)

		_, _, err := server.handleSubmit(ctx, nil, SubmitInput{Content: "text"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	docs := &mockDocumentService{documents: []domain.Document{
		{ID: "doc-1", Title: "Guide", URI: "/docs/guide.md", Kind: domain.SourceKindMarkdown, CreatedAt: created},
		{ID: "doc-2", Title: "Manual", Kind: domain.SourceKindPDF, CreatedAt: created},
	}}
	server := newTestServer(t, &mockAnswerService{}, docs)

	_, output, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "doc-1", output.Documents[0].ID)
	assert.Equal(t, "markdown", output.Documents[0].Kind)
	assert.Equal(t, "2026-03-01T09:30:00Z", output.Documents[0].CreatedAt)
	assert.Equal(t, "pdf", output.Documents[1].Kind)
}
