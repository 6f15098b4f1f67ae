package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quizzone/internal/domain"
)

type questionBankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	Theme     string            `bun:"theme,pk"`
	Locale    string            `bun:"locale,pk"`
	Data      []domain.Question `bun:"data,type:jsonb"`
	UpdatedAt time.Time         `bun:"updated_at"`
}

// SeedBanks upserts one row per theme for locale and returns the number of
// rows written.
func SeedBanks(ctx context.Context, db *bun.DB, locale string, banks map[string][]domain.Question) (int, error) {
	if len(banks) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]questionBankRow, 0, len(banks))
	for theme, questions := range banks {
		rows = append(rows, questionBankRow{
			Theme:     theme,
			Locale:    locale,
			Data:      questions,
			UpdatedAt: now,
		})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (theme, locale) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed banks: %w", err)
	}
	return len(rows), nil
}
