// Package filebank serves question banks stored as JSON files, either from a
// directory on disk or from the banks embedded in the binary.
package filebank

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"quizzone/internal/domain"
	"quizzone/internal/i18n"
	"quizzone/internal/lib/logger"
)

//go:embed data/*.json
var embedded embed.FS

// Loader reads data/questions-<theme>[-en].json from a file system.
type Loader struct {
	fsys   fs.FS
	locale string
	log    *slog.Logger
}

// New reads banks from fsys. A nil logger means slog.Default().
func New(fsys fs.FS, locale string, log *slog.Logger) *Loader {
	return &Loader{
		fsys:   fsys,
		locale: i18n.NormalizeLocale(locale),
		log:    logger.OrDefault(log),
	}
}

// Embedded reads the banks compiled into the binary.
func Embedded(locale string, log *slog.Logger) *Loader {
	return New(embedded, locale, log)
}

// Dir reads banks below dir, which must contain a data/ directory.
func Dir(dir, locale string, log *slog.Logger) *Loader {
	return New(os.DirFS(dir), locale, log)
}

func (l *Loader) Locale() string {
	return l.locale
}

func (l *Loader) LoadBank(ctx context.Context, theme string) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := i18n.ResolveResourcePath(theme, l.locale)
	raw, err := fs.ReadFile(l.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoQuestionsAvailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	fixed := 0
	for i := range questions {
		if questions[i].Category == "" {
			questions[i].Category = theme
			fixed++
		}
	}
	if fixed > 0 {
		l.log.Warn("bank records missing category", "theme", theme, "count", fixed)
	}
	l.log.Debug("bank loaded", "theme", theme, "locale", l.locale, "questions", len(questions))
	return questions, nil
}

// LoadAll reads every theme, skipping the ones that have no bank file.
func (l *Loader) LoadAll(ctx context.Context, themes []string) (map[string][]domain.Question, error) {
	banks := make(map[string][]domain.Question, len(themes))
	for _, theme := range themes {
		questions, err := l.LoadBank(ctx, theme)
		if errors.Is(err, domain.ErrNoQuestionsAvailable) {
			l.log.Warn("no bank for theme", "theme", theme, "locale", l.locale)
			continue
		}
		if err != nil {
			return nil, err
		}
		banks[theme] = questions
	}
	return banks, nil
}
