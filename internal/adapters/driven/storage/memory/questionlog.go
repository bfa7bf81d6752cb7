package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure QuestionLogStore implements the interface.
var _ driven.QuestionLogStore = (*QuestionLogStore)(nil)

// QuestionLogStore is an in-memory implementation of driven.QuestionLogStore.
type QuestionLogStore struct {
	mu      sync.RWMutex
	entries []domain.QuestionLog
}

// NewQuestionLogStore creates a new in-memory question log store.
func NewQuestionLogStore() *QuestionLogStore {
	return &QuestionLogStore{}
}

// Append records an answered question.
func (s *QuestionLogStore) Append(_ context.Context, entry *domain.QuestionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *QuestionLogStore) Recent(_ context.Context, limit int) ([]domain.QuestionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuestionLog
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// All returns every entry in append order.
func (s *QuestionLogStore) All() []domain.QuestionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuestionLog(nil), s.entries...)
}
