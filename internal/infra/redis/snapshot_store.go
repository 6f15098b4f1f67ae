package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"quizzone/internal/domain"
)

// SnapshotStore keeps each game's resumable snapshot as JSON with a TTL.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, gameID string, snapshot domain.SessionSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(gameID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LoadSnapshot(ctx context.Context, gameID string) (domain.SessionSnapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionSnapshot{}, false, nil
	}
	if err != nil {
		return domain.SessionSnapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var snapshot domain.SessionSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return domain.SessionSnapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, true, nil
}

func (s *SnapshotStore) key(gameID string) string {
	return "quiz:snapshot:" + gameID
}
