package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"quizzone/internal/domain"
	"quizzone/internal/lib/logger"
)

const (
	defaultCategory   = "General"
	defaultDifficulty = domain.DifficultyMedium
	placeholderAnswer = "Answer"
)

// BankLoader supplies the raw question pool of one theme.
type BankLoader interface {
	LoadBank(ctx context.Context, theme string) ([]domain.Question, error)
}

// Generator selects and shuffles quiz questions from theme pools.
type Generator struct {
	loader BankLoader
	themes []string
	log    *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Generator)

// WithRand makes the generator deterministic in tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// NewGenerator builds a generator; themes is the set a "mixed" quiz draws from.
func NewGenerator(loader BankLoader, themes []string, opts ...Option) *Generator {
	g := &Generator{
		loader: loader,
		themes: slices.Clone(themes),
		rnd:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.OrDefault(g.log)
	return g
}

// Themes returns the themes a mixed quiz spans.
func (g *Generator) Themes() []string {
	return slices.Clone(g.themes)
}

// Generate resolves the pool for theme and builds up to count questions from it.
// A pool that ends up empty is reported as domain.ErrNoQuestionsAvailable.
func (g *Generator) Generate(ctx context.Context, theme string, difficulty domain.Difficulty, count int) ([]domain.QuizQuestion, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidQuestionCount
	}
	if difficulty == "" {
		difficulty = domain.DifficultyMixed
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}

	pool, err := g.Pool(ctx, theme)
	if err != nil {
		return nil, err
	}

	questions := g.Build(pool, difficulty, count)
	if len(questions) == 0 {
		return nil, fmt.Errorf("theme %q: %w", theme, domain.ErrNoQuestionsAvailable)
	}
	g.log.Debug("quiz generated", "theme", theme, "difficulty", difficulty, "requested", count, "questions", len(questions))
	return questions, nil
}

// Pool loads the question pool of a theme, or the concatenation of every theme
// for domain.ThemeMixed. Failed loads count as empty pools.
func (g *Generator) Pool(ctx context.Context, theme string) ([]domain.Question, error) {
	themes := []string{theme}
	if theme == domain.ThemeMixed {
		themes = g.themes
	}

	pools := make([][]domain.Question, len(themes))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, t := range themes {
		eg.Go(func() error {
			bank, err := g.loader.LoadBank(egCtx, t)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				g.log.Warn("question bank unavailable", "theme", t, "err", err)
				return nil
			}
			pools[i] = bank
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var pool []domain.Question
	for _, p := range pools {
		pool = append(pool, p...)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("theme %q: %w", theme, domain.ErrNoQuestionsAvailable)
	}
	return pool, nil
}

// Build filters, samples and prepares up to count questions from pool.
// The result is shorter than count when the pool is smaller.
func (g *Generator) Build(pool []domain.Question, difficulty domain.Difficulty, count int) []domain.QuizQuestion {
	if count <= 0 || len(pool) == 0 {
		return []domain.QuizQuestion{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	selected := Shuffle(g.rnd, FilterByDifficulty(pool, difficulty, count))
	selected = selected[:min(count, len(selected))]

	questions := make([]domain.QuizQuestion, 0, len(selected))
	for _, q := range selected {
		questions = append(questions, g.prepareLocked(q))
	}
	return questions
}

// FilterByDifficulty keeps only questions of the requested difficulty, but only
// when that leaves at least count questions or more than half of the pool.
// Otherwise the pool is returned unfiltered so the quiz is not starved.
func FilterByDifficulty(pool []domain.Question, difficulty domain.Difficulty, count int) []domain.Question {
	if difficulty == "" || difficulty == domain.DifficultyMixed {
		return pool
	}

	filtered := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Difficulty == difficulty {
			filtered = append(filtered, q)
		}
	}
	if len(filtered) >= count || 2*len(filtered) > len(pool) {
		return filtered
	}
	return pool
}

// Shuffle returns a Fisher-Yates permutation of a copy of s.
func Shuffle[T any](r *rand.Rand, s []T) []T {
	out := slices.Clone(s)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (g *Generator) prepareLocked(q domain.Question) domain.QuizQuestion {
	correct, options, malformed := optionSet(q)
	if malformed {
		g.log.Warn("malformed question, substituting options", "question", q.Text, "options", len(options))
	}

	shuffled := Shuffle(g.rnd, options)
	correctIndex := slices.Index(shuffled, correct)
	if correctIndex < 0 {
		correctIndex = 0
	}

	category := q.Category
	if category == "" {
		category = defaultCategory
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	return domain.QuizQuestion{
		Text:         q.Text,
		Options:      shuffled,
		CorrectIndex: correctIndex,
		Category:     category,
		Difficulty:   difficulty,
	}
}

// optionSet returns the correct answer and the unshuffled, de-duplicated
// options of q. Records without a correct answer fall back to the legacy
// options list, then to a placeholder; records without incorrect answers
// fall back to the legacy options, then to placeholder options.
func optionSet(q domain.Question) (string, []string, bool) {
	malformed := false
	correct := q.CorrectAnswer
	legacy := q.Options
	if correct == "" {
		malformed = true
		if len(legacy) > 0 && legacy[0] != "" {
			correct, legacy = legacy[0], legacy[1:]
		} else {
			correct = placeholderAnswer
		}
	}

	incorrect := q.IncorrectAnswers
	if len(incorrect) == 0 {
		malformed = true
		for _, opt := range legacy {
			if opt != correct {
				incorrect = append(incorrect, opt)
			}
		}
	}

	var options []string
	if len(incorrect) == 0 {
		options = placeholderOptions(correct)
	} else {
		options = append(slices.Clone(incorrect), correct)
	}
	return correct, unique(options), malformed
}

func placeholderOptions(correct string) []string {
	return []string{correct, "Not " + correct, "Option C", "Option D"}
}

func unique(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := options[:0]
	for _, opt := range options {
		if _, ok := seen[opt]; ok {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}
