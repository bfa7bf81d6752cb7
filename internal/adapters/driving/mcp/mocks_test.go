package mcp

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	report    *domain.IngestReport
	err       error
	submitted *domain.RawDocument
}

func (m *mockDocumentService) Submit(
	_ context.Context,
	raw *domain.RawDocument,
) (*domain.Document, *domain.IngestReport, error) {
	m.submitted = raw
	if m.err != nil {
		return nil, nil, m.err
	}
	doc := m.document
	if doc == nil {
		doc = &domain.Document{ID: "doc-new", Title: raw.Title, Kind: raw.Kind}
	}
	return doc, m.report, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}
