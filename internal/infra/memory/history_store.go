package memory

import (
	"context"
	"slices"
	"sync"

	"quizzone/internal/domain"
)

// HistoryStore keeps the most recent quiz results, newest first.
type HistoryStore struct {
	limit int

	mu      sync.RWMutex
	results []domain.QuizResult
}

// NewHistoryStore keeps at most limit results; limit <= 0 keeps everything.
func NewHistoryStore(limit int) *HistoryStore {
	return &HistoryStore{limit: limit}
}

func (s *HistoryStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	result.Results = slices.Clone(result.Results)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = slices.Insert(s.results, 0, result)
	if s.limit > 0 && len(s.results) > s.limit {
		s.results = s.results[:s.limit]
	}
	return nil
}

func (s *HistoryStore) RecentResults(_ context.Context, limit int) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.results)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(s.results[:n]), nil
}
