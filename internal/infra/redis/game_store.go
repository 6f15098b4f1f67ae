package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quizzone/internal/app"
)

const gameKeyPrefix = "quiz:game:"

// GameStore keeps games in a local map, so the in-process broadcast works,
// and leases each one in Redis.
//
// Every lookup renews the lease. A game whose lease lapsed while nobody was
// connected is dropped from the map; the next Open rebuilds it from its
// snapshot. A lease held by another instance makes the game Live here too.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]*app.Game
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (s *GameStore) GetOrCreate(gameID string) *app.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[gameID]; ok {
		return game
	}
	game := app.NewGame(gameID)
	s.games[gameID] = game
	_ = s.client.Set(context.Background(), s.key(gameID), "1", s.ttl).Err()
	return game
}

// Get returns a local game and renews its lease. An expired lease evicts the
// game unless clients are still subscribed to it.
func (s *GameStore) Get(gameID string) (*app.Game, bool) {
	s.mu.RLock()
	game, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.renew(gameID) {
		return game, true
	}
	if game.Watched() {
		_ = s.client.Set(context.Background(), s.key(gameID), "1", s.ttl).Err()
		return game, true
	}

	s.mu.Lock()
	if s.games[gameID] == game {
		delete(s.games, gameID)
	}
	s.mu.Unlock()
	return nil, false
}

// Live reports whether any instance holds a lease on gameID.
func (s *GameStore) Live(ctx context.Context, gameID string) bool {
	n, err := s.client.Exists(ctx, s.key(gameID)).Result()
	return err == nil && n > 0
}

func (s *GameStore) DeleteIfEmpty(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return
	}
	if game.IsEmpty() {
		delete(s.games, gameID)
		_ = s.client.Del(context.Background(), s.key(gameID)).Err()
	}
}

// Len reports how many games this instance holds.
func (s *GameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// renew extends the lease and reports whether it still existed. Redis being
// unreachable counts as renewed so an outage never drops a game.
func (s *GameStore) renew(gameID string) bool {
	ok, err := s.client.Expire(context.Background(), s.key(gameID), s.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

func (s *GameStore) key(gameID string) string {
	return gameKeyPrefix + gameID
}
