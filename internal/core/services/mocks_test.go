package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kassist/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts without a registered vector embed to fallback.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	failOn   map[string]bool
	embedErr error
	dims     int
	model    string
	calls    int
}

func newMockEmbedder(dims int) *mockEmbeddingService {
	fallback := make([]float32, dims)
	return &mockEmbeddingService{
		vectors:  make(map[string][]float32),
		fallback: fallback,
		failOn:   make(map[string]bool),
		dims:     dims,
		model:    "mock-embed",
	}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn[text] {
		return nil, errors.New("embedding backend refused")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return m.dims }
func (m *mockEmbeddingService) ModelName() string          { return m.model }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu         sync.Mutex
	candidates []string
	err        error
	block      bool
	prompts    []string
	opts       []driven.GenerateOptions
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) ([]string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// failingLogStore implements driven.QuestionLogStore and always fails.
type failingLogStore struct{}

func (failingLogStore) Append(context.Context, *domain.QuestionLog) error {
	return errors.New("disk full")
}

func (failingLogStore) Recent(context.Context, int) ([]domain.QuestionLog, error) {
	return nil, errors.New("disk full")
}

// --- Fixture ---

type pipeline struct {
	docs    *memory.DocumentStore
	logs    *memory.QuestionLogStore
	index   *flat.Store
	embed   *mockEmbeddingService
	llm     *mockLLMService
	ingest  *IngestService
	answers *AnswerService
}

func newPipeline(t *testing.T, dims int) *pipeline {
	t.Helper()

	store, err := flat.NewStore(t.TempDir())
	require.NoError(t, err)

	p := &pipeline{
		docs:  memory.NewDocumentStore(),
		logs:  memory.NewQuestionLogStore(),
		index: store,
		embed: newMockEmbedder(dims),
		llm:   &mockLLMService{candidates: []string{"  A grounded answer.  "}},
	}
	p.ingest = NewIngestService(chunker.New(), p.embed, p.docs, p.index)
	p.answers = NewAnswerService(p.embed, p.llm, p.docs, p.index, p.logs)
	return p
}

// addDocument stores a document and ingests it.
func (p *pipeline) addDocument(
	t *testing.T,
	id, file string,
	kind domain.SourceKind,
	content string,
) *domain.IngestReport {
	t.Helper()

	doc := &domain.Document{
		ID:        id,
		Title:     file,
		URI:       "/docs/" + file,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now(),
	}
	require.NoError(t, p.docs.SaveDocument(context.Background(), doc))

	report, err := p.ingest.Ingest(context.Background(), doc)
	require.NoError(t, err)
	return report
}
