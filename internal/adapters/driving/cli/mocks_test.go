package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// mockDocumentService implements driving.DocumentService for CLI tests.
type mockDocumentService struct {
	docs      []domain.Document
	chunks    map[string][]domain.Chunk
	submitted []*domain.RawDocument
	submitErr error
	report    *domain.IngestReport
}

func (m *mockDocumentService) Submit(
	_ context.Context, raw *domain.RawDocument,
) (*domain.Document, *domain.IngestReport, error) {
	m.submitted = append(m.submitted, raw)
	if m.submitErr != nil {
		return nil, nil, m.submitErr
	}
	doc := &domain.Document{ID: "doc-new", Title: raw.Title, URI: raw.URI, Kind: raw.Kind, CreatedAt: testTime}
	report := m.report
	if report == nil {
		report = &domain.IngestReport{DocumentID: doc.ID, Passages: 2, Indexed: 2, IndexLen: 2}
	}
	return doc, report, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, id string) ([]domain.Chunk, error) {
	if _, err := m.Get(context.Background(), id); err != nil {
		return nil, err
	}
	return m.chunks[id], nil
}

// mockAnswerService implements driving.AnswerService for CLI tests.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	asked  []string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: domain.NoKnowledgeAnswer, NoKnowledge: true}, nil
}

// mockIndexService implements driving.IndexService for CLI tests.
type mockIndexService struct {
	verify  *domain.IndexReport
	rebuild *domain.IndexReport
	err     error
	rebuilt bool
}

func (m *mockIndexService) Verify(_ context.Context) (*domain.IndexReport, error) {
	return m.verify, m.err
}

func (m *mockIndexService) Rebuild(_ context.Context) (*domain.IndexReport, error) {
	m.rebuilt = true
	return m.rebuild, m.err
}

// mockHistoryService implements driving.HistoryService for CLI tests.
type mockHistoryService struct {
	entries []domain.QuestionLog
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.QuestionLog, error) {
	m.limit = limit
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	documents *mockDocumentService
	answers   *mockAnswerService
	index     *mockIndexService
	history   *mockHistoryService
	settings  *mockSettingsService
}

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:        "doc-1",
			Title:     "Test Document 1",
			URI:       "/docs/handbook.pdf",
			Kind:      domain.SourceKindPDF,
			Content:   "First page.\fSecond page.",
			CreatedAt: testTime,
		},
		{
			ID:        "doc-2",
			Title:     "Test Document 2",
			Kind:      domain.SourceKindMarkdown,
			Content:   "# Notes\n\nSome notes.",
			CreatedAt: testTime,
		},
	}
}

// setupTestServices installs mock services and returns a cleanup that
// removes them and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		documents: &mockDocumentService{
			docs: testDocuments(),
			chunks: map[string][]domain.Chunk{
				"doc-1": {
					{ID: "c1", DocumentID: "doc-1", Content: "First page.", PageNumber: 1, Position: 0},
					{ID: "c2", DocumentID: "doc-1", Content: "Second page.", PageNumber: 2, Position: 1},
				},
			},
		},
		answers:  &mockAnswerService{},
		index:    &mockIndexService{},
		history:  &mockHistoryService{},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Document: ts.documents,
		Answer:   ts.answers,
		Index:    ts.index,
		History:  ts.history,
		Settings: ts.settings,
	})

	return ts, func() {
		SetServices(nil)
		askJSON = false
		askSources = false
		ingestTitle = ""
		showChunks = false
		historyLimit = 20
		watchScan = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// executeCommand runs the root command with args and captures its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
