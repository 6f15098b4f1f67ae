package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizzone/internal/domain"
	"quizzone/internal/quiz"
)

func TestBankCacheCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{
			"general": sampleBank(),
		}),
	}
	cache := NewBankCache(loader, time.Minute)

	if _, err := cache.LoadBank(context.Background(), "general"); err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := cache.LoadBank(context.Background(), "general"); err != nil {
		t.Fatalf("load bank 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestBankCacheExpires(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{"general": sampleBank()}),
	}
	cache := NewBankCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.LoadBank(context.Background(), "general"); err != nil {
		t.Fatalf("load bank: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.LoadBank(context.Background(), "general"); err != nil {
		t.Fatalf("load bank after expiry: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestBankCacheDoesNotCacheFailures(t *testing.T) {
	loader := &countingLoader{BankLoader: &failingLoader{err: errors.New("disk on fire")}}
	cache := NewBankCache(loader, time.Minute)

	for range 2 {
		if _, err := cache.LoadBank(context.Background(), "general"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected every failed load to retry, loader calls %d", loader.count())
	}
}

func TestBankCacheDoesNotCacheEmptyBanks(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{"general": {}}),
	}
	cache := NewBankCache(loader, time.Minute)

	for range 2 {
		if _, err := cache.LoadBank(context.Background(), "general"); err != nil {
			t.Fatalf("load bank: %v", err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected empty bank to reload, loader calls %d", loader.count())
	}
}

func TestStaticBankLoaderUnknownTheme(t *testing.T) {
	_, err := NewStaticBankLoader(nil).LoadBank(context.Background(), "sports")
	if !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions error, got %v", err)
	}
}

type countingLoader struct {
	quiz.BankLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, theme string) ([]domain.Question, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.BankLoader.LoadBank(ctx, theme)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type failingLoader struct {
	err error
}

func (l *failingLoader) LoadBank(context.Context, string) ([]domain.Question, error) {
	return nil, l.err
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			Text:             "What is 2 + 2?",
			CorrectAnswer:    "4",
			IncorrectAnswers: []string{"3", "5"},
			Category:         "Math",
			Difficulty:       domain.DifficultyEasy,
		},
	}
}
