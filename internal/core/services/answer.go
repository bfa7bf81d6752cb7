package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
	"github.com/custodia-labs/kassist/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// defaultAnswerMaxTokens bounds generated answers.
const defaultAnswerMaxTokens = 350

// fallbackAnswerPrompt is used when no prompt store is configured.
// It matches the default template shipped with the file prompt store.
const fallbackAnswerPrompt = "Context:\n%s\n\n" +
	"Based only on the above context, write a detailed, multi-sentence answer to the following question. " +
	"Your answer should be a full paragraph (at least 4-5 sentences), using all relevant information, " +
	"and should not repeat section numbers or headings. " +
	"Explain as if teaching a high school student, and include examples if possible.\n" +
	"Q: %s\nA:"

// AnswerService answers questions using retrieval-augmented generation.
// It never takes the index lock; the store's atomic saves guarantee it
// reads whole files.
type AnswerService struct {
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
	logStore   driven.QuestionLogStore
	prompts    driven.PromptStore
	topK       int
	timeout    time.Duration
	now        func() time.Time
}

// NewAnswerService creates a new answer service.
// The embedder and llm may be nil; Answer then reports them unavailable.
func NewAnswerService(
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	docStore driven.DocumentStore,
	indexStore driven.IndexStore,
	logStore driven.QuestionLogStore,
) *AnswerService {
	return &AnswerService{
		embedder:   embedder,
		llm:        llm,
		docStore:   docStore,
		indexStore: indexStore,
		logStore:   logStore,
		topK:       domain.DefaultTopK,
		timeout:    domain.DefaultGenerationTimeoutSeconds * time.Second,
		now:        time.Now,
	}
}

// SetPromptStore sets the store the answer template is loaded from.
func (s *AnswerService) SetPromptStore(prompts driven.PromptStore) {
	s.prompts = prompts
}

// SetTopK sets how many passages are retrieved. Values below 1 are ignored.
func (s *AnswerService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// SetGenerationTimeout bounds each generator call. Values below 1 are ignored.
func (s *AnswerService) SetGenerationTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Answer retrieves relevant passages and generates a grounded answer.
func (s *AnswerService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Answer")
	logger.Debug("Question: %q", question)

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	info, err := s.indexStore.Stat(ctx)
	if err != nil {
		logger.Warn("%v: %v", domain.ErrIndexInconsistency, err)
		return noKnowledge(question), nil
	}
	if info == nil {
		logger.Debug("No index persisted")
		return noKnowledge(question), nil
	}
	if err := checkIdentity(info, s.embedder); err != nil {
		return nil, err
	}
	if len(queryVec) != info.Dimension {
		return nil, fmt.Errorf("%w: index has %d, question embedding has %d",
			domain.ErrDimensionMismatch, info.Dimension, len(queryVec))
	}

	idMap, err := s.indexStore.LoadIDMap(ctx)
	if err != nil {
		logger.Warn("%v", err)
		return noKnowledge(question), nil
	}
	index := s.indexStore.Load(ctx, info.Dimension, info.Model)
	if index.Len() == 0 || idMap.Len() == 0 {
		logger.Debug("Index has %d vectors, map has %d entries", index.Len(), idMap.Len())
		return noKnowledge(question), nil
	}
	if index.Len() != idMap.Len() || index.Generation() != idMap.Generation {
		logger.Warn("%v: index %d vectors (generation %d), map %d entries (generation %d)",
			domain.ErrIndexInconsistency, index.Len(), index.Generation(), idMap.Len(), idMap.Generation)
	}

	hits := index.Search(queryVec, s.topK)
	logger.Debug("Search returned %d hits (k=%d)", len(hits), s.topK)

	sources, err := s.resolve(ctx, hits, idMap)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return &domain.Answer{Question: question, Text: domain.NoRelevantAnswer}, nil
	}

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	prompt, err := s.buildPrompt(question, sources)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	citations := make([]string, len(sources))
	for i, src := range sources {
		citations[i] = src.Citation()
	}

	answer := &domain.Answer{
		Question:  question,
		Text:      text,
		Citations: citations,
		Sources:   sources,
	}
	s.record(ctx, answer)
	return answer, nil
}

// resolve maps search hits to stored chunks, skipping anything that no
// longer resolves. Index order is preserved.
func (s *AnswerService) resolve(
	ctx context.Context,
	hits []driven.VectorHit,
	idMap *domain.IDMap,
) ([]domain.ScoredChunk, error) {
	docs := make(map[string]*domain.Document)
	sources := make([]domain.ScoredChunk, 0, len(hits))

	for _, hit := range hits {
		chunkID, ok := idMap.Resolve(hit.Slot)
		if !ok {
			logger.Warn("%v: slot %d outside identifier map (%d entries); skipped",
				domain.ErrIndexInconsistency, hit.Slot, idMap.Len())
			continue
		}

		chunk, err := s.docStore.GetChunk(ctx, chunkID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("%v: chunk %s at slot %d not found; skipped",
				domain.ErrIndexInconsistency, chunkID, hit.Slot)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get chunk %s: %w", chunkID, err)
		}

		doc, ok := docs[chunk.DocumentID]
		if !ok {
			doc, err = s.docStore.GetDocument(ctx, chunk.DocumentID)
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("%v: document %s of chunk %s not found; skipped",
					domain.ErrIndexInconsistency, chunk.DocumentID, chunkID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
			}
			docs[chunk.DocumentID] = doc
		}

		logger.Debug("  slot=%d distance=%.4f chunk=%s", hit.Slot, hit.Distance, chunkID)
		sources = append(sources, domain.ScoredChunk{
			Chunk:      chunk,
			Document:   doc,
			Slot:       hit.Slot,
			Distance:   hit.Distance,
			Similarity: 1 - hit.Distance,
		})
	}
	return sources, nil
}

// buildPrompt fills the answer template with the retrieved context.
func (s *AnswerService) buildPrompt(question string, sources []domain.ScoredChunk) (string, error) {
	template := fallbackAnswerPrompt
	if s.prompts != nil {
		loaded, err := s.prompts.Load(driven.PromptAnswer)
		if err != nil {
			return "", fmt.Errorf("load answer prompt: %w", err)
		}
		template = loaded
	}

	texts := make([]string, len(sources))
	for i, src := range sources {
		texts[i] = src.Chunk.Content
	}
	return fmt.Sprintf(template, strings.Join(texts, "\n\n"), question), nil
}

// generate calls the generator under the configured timeout.
func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.Debug("Generating with %s (timeout %s)", s.llm.ModelName(), s.timeout)
	candidates, err := s.llm.Generate(genCtx, prompt, driven.GenerateOptions{MaxTokens: defaultAnswerMaxTokens})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", domain.ErrGenerationTimeout, s.timeout, err)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", domain.ErrGenerationFailed)
	}

	text := strings.TrimSpace(candidates[0])
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrGenerationFailed)
	}
	return text, nil
}

// record appends the question log. Failures are logged, not returned.
func (s *AnswerService) record(ctx context.Context, answer *domain.Answer) {
	if s.logStore == nil {
		return
	}
	entry := &domain.QuestionLog{
		ID:        uuid.New().String(),
		Question:  answer.Question,
		Answer:    answer.Text,
		Sources:   domain.JoinCitations(answer.Citations),
		CreatedAt: s.now().UTC(),
	}
	if err := s.logStore.Append(ctx, entry); err != nil {
		logger.Warn("record question log: %v", err)
	}
}

func noKnowledge(question string) *domain.Answer {
	return &domain.Answer{
		Question:    question,
		Text:        domain.NoKnowledgeAnswer,
		NoKnowledge: true,
	}
}
