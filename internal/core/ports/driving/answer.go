package driving

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

// AnswerService answers questions from the indexed knowledge base.
type AnswerService interface {
	// Answer retrieves relevant passages and generates a grounded answer.
	// An empty knowledge base is a successful outcome (Answer.NoKnowledge).
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// HistoryService exposes previously answered questions.
type HistoryService interface {
	// Recent returns up to limit answered questions, newest first.
	Recent(ctx context.Context, limit int) ([]domain.QuestionLog, error)
}
