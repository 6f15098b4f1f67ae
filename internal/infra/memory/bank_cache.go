package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizzone/internal/domain"
	"quizzone/internal/quiz"
)

// BankCache caches question banks with TTL to avoid repeated loads.
// Failed or empty loads are not cached so the next call retries.
type BankCache struct {
	loader quiz.BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBankCache(loader quiz.BankLoader, ttl time.Duration) *BankCache {
	return &BankCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (c *BankCache) LoadBank(ctx context.Context, theme string) ([]domain.Question, error) {
	if questions, ok := c.lookup(theme); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(theme, func() (interface{}, error) {
		if questions, ok := c.lookup(theme); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadBank(ctx, theme)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			c.mu.Lock()
			c.cache[theme] = cachedBank{
				questions: questions,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *BankCache) lookup(theme string) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[theme]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves banks from an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string][]domain.Question
}

func NewStaticBankLoader(banks map[string][]domain.Question) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, theme string) ([]domain.Question, error) {
	if questions, ok := l.banks[theme]; ok {
		return questions, nil
	}
	return nil, domain.ErrNoQuestionsAvailable
}
