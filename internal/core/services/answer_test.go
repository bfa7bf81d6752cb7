package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kassist/internal/core/domain"
)

const guideContent = "Alpha facts.\n\nBeta facts.\n\nGamma facts.\n\nDelta facts."

// newGuidePipeline indexes one four-passage document whose vectors make
// the ranking for "What is alpha?" Alpha, Gamma, Beta, Delta.
func newGuidePipeline(t *testing.T) *pipeline {
	t.Helper()

	p := newPipeline(t, 2)
	p.embed.vectors["What is alpha?"] = []float32{1, 0}
	p.embed.vectors["Alpha facts."] = []float32{1, 0}
	p.embed.vectors["Beta facts."] = []float32{0, 1}
	p.embed.vectors["Gamma facts."] = []float32{0.9, 0.1}
	p.embed.vectors["Delta facts."] = []float32{-1, 0}

	p.addDocument(t, "guide", "guide.md", domain.SourceKindMarkdown, guideContent)
	return p
}

type stubPromptStore struct {
	template string
	err      error
}

func (s stubPromptStore) Load(string) (string, error) { return s.template, s.err }
func (s stubPromptStore) Reload()                     {}

func TestAnswerService_EmptyIndexReturnsNoKnowledge(t *testing.T) {
	p := newPipeline(t, 2)

	answer, err := p.answers.Answer(context.Background(), "Anything?")

	require.NoError(t, err)
	assert.True(t, answer.NoKnowledge)
	assert.Equal(t, domain.NoKnowledgeAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, 0, p.llm.callCount())
	assert.Empty(t, p.logs.All())
}

func TestAnswerService_MissingIDMapReturnsNoKnowledge(t *testing.T) {
	p := newGuidePipeline(t)
	require.NoError(t, os.Remove(p.index.IDMapPath()))

	answer, err := p.answers.Answer(context.Background(), "What is alpha?")

	require.NoError(t, err)
	assert.True(t, answer.NoKnowledge)
	assert.Equal(t, 0, p.llm.callCount())
	assert.Empty(t, p.logs.All())
}

func TestAnswerService_AnswersWithCitations(t *testing.T) {
	p := newGuidePipeline(t)

	answer, err := p.answers.Answer(context.Background(), "  What is alpha?  ")

	require.NoError(t, err)
	assert.False(t, answer.NoKnowledge)
	assert.Equal(t, "A grounded answer.", answer.Text)
	assert.Equal(t, []string{
		"guide.md - Page 1",
		"guide.md - Page 3",
		"guide.md - Page 2",
	}, answer.Citations)

	require.Len(t, answer.Sources, 3)
	assert.InDelta(t, 0.0, answer.Sources[0].Distance, 1e-6)
	assert.InDelta(t, 1.0, answer.Sources[0].Similarity, 1e-6)
	assert.InDelta(t, 0.02, answer.Sources[1].Distance, 1e-4)
	assert.InDelta(t, 2.0, answer.Sources[2].Distance, 1e-4)
	assert.InDelta(t, -1.0, answer.Sources[2].Similarity, 1e-4)

	require.Equal(t, 1, p.llm.callCount())
	prompt := p.llm.prompts[0]
	assert.Contains(t, prompt, "Alpha facts.\n\nGamma facts.\n\nBeta facts.")
	assert.Contains(t, prompt, "Q: What is alpha?")
	assert.Contains(t, prompt, "Based only on the above context")
	assert.Contains(t, prompt, "full paragraph")
	assert.True(t, strings.HasSuffix(prompt, "\nA:"))
	assert.NotContains(t, prompt, "Delta facts.")
	assert.Equal(t, defaultAnswerMaxTokens, p.llm.opts[0].MaxTokens)

	logs := p.logs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "What is alpha?", logs[0].Question)
	assert.Equal(t, "A grounded answer.", logs[0].Answer)
	assert.Equal(t, "guide.md - Page 1, guide.md - Page 3, guide.md - Page 2", logs[0].Sources)
	assert.NotEmpty(t, logs[0].ID)
}

func TestAnswerService_Deterministic(t *testing.T) {
	p := newGuidePipeline(t)
	ctx := context.Background()

	first, err := p.answers.Answer(ctx, "What is alpha?")
	require.NoError(t, err)
	second, err := p.answers.Answer(ctx, "What is alpha?")
	require.NoError(t, err)

	assert.Equal(t, first.Citations, second.Citations)
	assert.Equal(t, p.llm.prompts[0], p.llm.prompts[1])
}

func TestAnswerService_TopK(t *testing.T) {
	p := newGuidePipeline(t)
	p.answers.SetTopK(1)

	answer, err := p.answers.Answer(context.Background(), "What is alpha?")

	require.NoError(t, err)
	assert.Equal(t, []string{"guide.md - Page 1"}, answer.Citations)
}

func TestAnswerService_SkipsOutOfRangeSlots(t *testing.T) {
	p := newGuidePipeline(t)
	ctx := context.Background()

	idMap, err := p.index.LoadIDMap(ctx)
	require.NoError(t, err)
	idMap.IDs = idMap.IDs[:1]
	require.NoError(t, p.index.SaveIDMap(ctx, idMap))

	answer, err := p.answers.Answer(ctx, "What is alpha?")

	require.NoError(t, err)
	assert.Equal(t, []string{"guide.md - Page 1"}, answer.Citations)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, 0, answer.Sources[0].Slot)
}

func TestAnswerService_NoResolvableChunks(t *testing.T) {
	p := newGuidePipeline(t)
	ctx := context.Background()
	require.NoError(t, p.docs.DeleteDocument(ctx, "guide"))

	answer, err := p.answers.Answer(ctx, "What is alpha?")

	require.NoError(t, err)
	assert.False(t, answer.NoKnowledge)
	assert.Equal(t, domain.NoRelevantAnswer, answer.Text)
	assert.Equal(t, 0, p.llm.callCount())
	assert.Empty(t, p.logs.All())
}

func TestAnswerService_UsesPromptStore(t *testing.T) {
	p := newGuidePipeline(t)
	p.answers.SetTopK(2)
	p.answers.SetPromptStore(stubPromptStore{template: "CTX[%s] Q[%s]"})

	_, err := p.answers.Answer(context.Background(), "What is alpha?")

	require.NoError(t, err)
	assert.Equal(t, "CTX[Alpha facts.\n\nGamma facts.] Q[What is alpha?]", p.llm.prompts[0])
}

func TestAnswerService_PromptStoreError(t *testing.T) {
	p := newGuidePipeline(t)
	p.answers.SetPromptStore(stubPromptStore{err: errors.New("unreadable")})

	_, err := p.answers.Answer(context.Background(), "What is alpha?")

	assert.Error(t, err)
	assert.Equal(t, 0, p.llm.callCount())
}

func TestAnswerService_GenerationTimeout(t *testing.T) {
	p := newGuidePipeline(t)
	p.llm.block = true
	p.answers.SetGenerationTimeout(20 * time.Millisecond)

	_, err := p.answers.Answer(context.Background(), "What is alpha?")

	require.ErrorIs(t, err, domain.ErrGenerationTimeout)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Empty(t, p.logs.All())
}

func TestAnswerService_GenerationFailures(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		err        error
	}{
		{name: "backend error", err: errors.New("model crashed")},
		{name: "no candidates", candidates: nil},
		{name: "blank candidate", candidates: []string{"   \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newGuidePipeline(t)
			p.llm.candidates = tt.candidates
			p.llm.err = tt.err

			answer, err := p.answers.Answer(context.Background(), "What is alpha?")

			require.ErrorIs(t, err, domain.ErrGenerationFailed)
			assert.NotErrorIs(t, err, domain.ErrGenerationTimeout)
			assert.Nil(t, answer)
			assert.Empty(t, p.logs.All())
		})
	}
}

func TestAnswerService_EmbeddingFailureIsUnavailable(t *testing.T) {
	p := newGuidePipeline(t)
	p.embed.embedErr = errors.New("connection refused")

	_, err := p.answers.Answer(context.Background(), "What is alpha?")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswerService_ModelMismatch(t *testing.T) {
	p := newGuidePipeline(t)
	p.embed.model = "different-model"

	_, err := p.answers.Answer(context.Background(), "What is alpha?")

	assert.ErrorIs(t, err, domain.ErrModelMismatch)
	assert.Equal(t, 0, p.llm.callCount())
}

func TestAnswerService_NoLLM(t *testing.T) {
	p := newGuidePipeline(t)
	svc := NewAnswerService(p.embed, nil, p.docs, p.index, p.logs)

	_, err := svc.Answer(context.Background(), "What is alpha?")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswerService_LogFailureDoesNotFailAnswer(t *testing.T) {
	p := newGuidePipeline(t)
	svc := NewAnswerService(p.embed, p.llm, p.docs, p.index, failingLogStore{})

	answer, err := svc.Answer(context.Background(), "What is alpha?")

	require.NoError(t, err)
	assert.Equal(t, "A grounded answer.", answer.Text)
}

func TestAnswerService_EmptyQuestion(t *testing.T) {
	p := newPipeline(t, 2)

	_, err := p.answers.Answer(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerService_FallbackPromptMatchesDefaultTemplate(t *testing.T) {
	assert.Equal(t, file.DefaultAnswerPrompt, fallbackAnswerPrompt)
}
