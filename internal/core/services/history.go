package services

import (
	"context"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultHistoryLimit applies when callers ask for zero or fewer entries.
const defaultHistoryLimit = 20

// HistoryService lists answered questions.
type HistoryService struct {
	logStore driven.QuestionLogStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(logStore driven.QuestionLogStore) *HistoryService {
	return &HistoryService{logStore: logStore}
}

// Recent returns up to limit answered questions, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.QuestionLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.logStore.Recent(ctx, limit)
}
