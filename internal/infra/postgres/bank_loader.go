package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizzone/internal/domain"
)

// BankLoader loads question bank JSONB from Postgres for one locale.
type BankLoader struct {
	pool   *pgxpool.Pool
	locale string
}

func NewBankLoader(pool *pgxpool.Pool, locale string) *BankLoader {
	return &BankLoader{pool: pool, locale: locale}
}

func (l *BankLoader) LoadBank(ctx context.Context, theme string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT data FROM question_banks WHERE theme=$1 AND locale=$2`,
		theme, l.locale,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: theme %q locale %q", domain.ErrNoQuestionsAvailable, theme, l.locale)
	}
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal bank: %w", err)
	}
	return questions, nil
}
