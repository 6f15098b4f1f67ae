package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quizzone/internal/domain"
	"quizzone/internal/quiz"
)

// BankCache caches question banks in Redis as one JSON document per theme
// and falls back to a loader on cache miss.
// Banks are stored as: SET quiz:bank:{locale}:{theme} <json> EX ttl
type BankCache struct {
	client *redis.Client
	loader quiz.BankLoader
	locale string
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankCache(client *redis.Client, loader quiz.BankLoader, locale string, ttl time.Duration) *BankCache {
	return &BankCache{
		client: client,
		loader: loader,
		locale: locale,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *BankCache) LoadBank(ctx context.Context, theme string) ([]domain.Question, error) {
	key := c.key(theme)
	if questions, ok := c.cached(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(theme, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if questions, ok := c.cached(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadBank(ctx, theme)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}
		if raw, err := json.Marshal(questions); err == nil {
			// best-effort: a failed write only costs a reload
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *BankCache) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (c *BankCache) key(theme string) string {
	return "quiz:bank:" + c.locale + ":" + theme
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
