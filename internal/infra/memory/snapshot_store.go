package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"quizzone/internal/domain"
)

// SnapshotStore keeps one resumable snapshot per game.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.SessionSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]domain.SessionSnapshot)}
}

func (s *SnapshotStore) SaveSnapshot(_ context.Context, gameID string, snapshot domain.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[gameID] = clone(snapshot)
	return nil
}

func (s *SnapshotStore) LoadSnapshot(_ context.Context, gameID string) (domain.SessionSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[gameID]
	if !ok {
		return domain.SessionSnapshot{}, false, nil
	}
	return clone(snapshot), true, nil
}

func clone(snapshot domain.SessionSnapshot) domain.SessionSnapshot {
	snapshot.Players = slices.Clone(snapshot.Players)
	snapshot.Scores = maps.Clone(snapshot.Scores)
	return snapshot
}
