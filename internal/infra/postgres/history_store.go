package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quizzone/internal/domain"
)

type quizResultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID            int64                 `bun:"id,pk,autoincrement"`
	GameID        string                `bun:"game_id"`
	Theme         string                `bun:"theme"`
	Difficulty    string                `bun:"difficulty"`
	QuestionCount int                   `bun:"question_count"`
	Results       []domain.RankedResult `bun:"results,type:jsonb"`
	PlayedAt      time.Time             `bun:"played_at"`
}

// HistoryStore persists finished quizzes in the quiz_results table and keeps
// at most limit rows.
type HistoryStore struct {
	db    *bun.DB
	limit int
}

func NewHistoryStore(db *bun.DB, limit int) *HistoryStore {
	return &HistoryStore{db: db, limit: limit}
}

func (s *HistoryStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	row := &quizResultRow{
		GameID:        result.GameID,
		Theme:         result.Theme,
		Difficulty:    string(result.Difficulty),
		QuestionCount: result.QuestionCount,
		Results:       result.Results,
		PlayedAt:      result.PlayedAt,
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		if s.limit <= 0 {
			return nil
		}
		keep := tx.NewSelect().
			Model((*quizResultRow)(nil)).
			Column("id").
			OrderExpr("played_at DESC, id DESC").
			Limit(s.limit)
		if _, err := tx.NewDelete().
			Model((*quizResultRow)(nil)).
			Where("id NOT IN (?)", keep).
			Exec(ctx); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (s *HistoryStore) RecentResults(ctx context.Context, limit int) ([]domain.QuizResult, error) {
	var rows []quizResultRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("played_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	results := make([]domain.QuizResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.QuizResult{
			GameID:        row.GameID,
			Theme:         row.Theme,
			Difficulty:    domain.Difficulty(row.Difficulty),
			QuestionCount: row.QuestionCount,
			Results:       row.Results,
			PlayedAt:      row.PlayedAt,
		})
	}
	return results, nil
}
