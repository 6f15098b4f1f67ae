package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quizzone/internal/domain"
)

const historyKey = "quiz:history"

// HistoryStore keeps recent results in a capped Redis list, newest first.
type HistoryStore struct {
	client *redis.Client
	limit  int
}

func NewHistoryStore(client *redis.Client, limit int) *HistoryStore {
	return &HistoryStore{client: client, limit: limit}
}

func (s *HistoryStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, historyKey, raw)
	if s.limit > 0 {
		pipe.LTrim(ctx, historyKey, 0, int64(s.limit-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push result: %w", err)
	}
	return nil
}

func (s *HistoryStore) RecentResults(ctx context.Context, limit int) ([]domain.QuizResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	items, err := s.client.LRange(ctx, historyKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	results := make([]domain.QuizResult, 0, len(items))
	for _, item := range items {
		var r domain.QuizResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			// skip entries written by an incompatible version
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
