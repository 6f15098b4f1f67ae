package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"quizzone/internal/domain"
	"quizzone/internal/lib/logger"
	"quizzone/internal/ranking"
)

const (
	DefaultQuestionCount = 10
	DefaultHistoryLimit  = 10
)

// QuizService contains the quiz use cases.
type QuizService struct {
	games     GameRepository
	generator QuestionGenerator
	history   HistoryStore
	snapshots SnapshotStore
	presenter Presenter
	log       *slog.Logger

	defaults     domain.Settings
	historyLimit int
}

type ServiceOption func(*QuizService)

func WithHistory(h HistoryStore) ServiceOption {
	return func(s *QuizService) { s.history = h }
}

func WithSnapshots(st SnapshotStore) ServiceOption {
	return func(s *QuizService) { s.snapshots = st }
}

func WithPresenter(p Presenter) ServiceOption {
	return func(s *QuizService) { s.presenter = p }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *QuizService) { s.log = l }
}

// WithDefaults sets the settings new games start with.
func WithDefaults(settings domain.Settings) ServiceOption {
	return func(s *QuizService) { s.defaults = settings }
}

func WithHistoryLimit(n int) ServiceOption {
	return func(s *QuizService) { s.historyLimit = n }
}

func NewQuizService(games GameRepository, generator QuestionGenerator, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		games:     games,
		generator: generator,
		history:   NopHistory{},
		snapshots: NopSnapshots{},
		presenter: NopPresenter{},
		defaults: domain.Settings{
			Theme:         domain.ThemeMixed,
			Difficulty:    domain.DifficultyMixed,
			QuestionCount: DefaultQuestionCount,
		},
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDefault(s.log)
	return s
}

// CreateGame opens a game under a fresh ID.
func (s *QuizService) CreateGame(ctx context.Context) (domain.GameView, error) {
	return s.Open(ctx, uuid.NewString())
}

// Open returns the game with gameID, creating it when unknown. A new game
// resumes from its saved snapshot when one exists.
func (s *QuizService) Open(ctx context.Context, gameID string) (domain.GameView, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return domain.GameView{}, domain.ErrGameNotFound
	}
	if game, ok := s.games.Get(gameID); ok {
		return game.view(), nil
	}

	game := s.games.GetOrCreate(gameID)
	var snapshot *domain.SessionSnapshot
	saved, ok, err := s.snapshots.LoadSnapshot(ctx, gameID)
	switch {
	case err != nil:
		s.log.Warn("load snapshot failed", "game", gameID, "err", err)
	case ok:
		snapshot = &saved
	}
	if game.init(s.defaults, snapshot) && snapshot != nil {
		s.log.Info("game resumed from snapshot", "game", gameID, "players", len(snapshot.Players))
	}
	return game.view(), nil
}

// View returns the current state of a game.
func (s *QuizService) View(ctx context.Context, gameID string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	return game.view(), nil
}

// AddPlayer joins a player to the roster of an idle or finished game.
func (s *QuizService) AddPlayer(ctx context.Context, gameID, name string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, err := game.addPlayer(name)
	if err != nil {
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	s.saveSnapshot(ctx, game)
	return ev.View, nil
}

// RemovePlayer drops a player and its score.
func (s *QuizService) RemovePlayer(ctx context.Context, gameID, name string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, err := game.removePlayer(name)
	if err != nil {
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	s.saveSnapshot(ctx, game)
	return ev.View, nil
}

// Configure changes theme, difficulty, question count and turn mode.
func (s *QuizService) Configure(ctx context.Context, gameID string, settings domain.Settings) (domain.GameView, error) {
	if settings.Theme == "" {
		settings.Theme = s.defaults.Theme
	}
	if settings.Difficulty == "" {
		settings.Difficulty = domain.DifficultyMixed
	}
	if !settings.Difficulty.Valid() {
		return domain.GameView{}, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, settings.Difficulty)
	}
	if settings.QuestionCount <= 0 {
		return domain.GameView{}, domain.ErrInvalidQuestionCount
	}

	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, err := game.configure(settings)
	if err != nil {
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	s.saveSnapshot(ctx, game)
	return ev.View, nil
}

// StartQuiz generates questions for the game settings and starts a session.
// Generation happens outside the game lock; a concurrent start is rejected and
// a reset during generation discards the generated quiz.
func (s *QuizService) StartQuiz(ctx context.Context, gameID string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	settings, epoch, err := game.beginStart()
	if err != nil {
		return domain.GameView{}, err
	}

	questions, genErr := s.generator.Generate(ctx, settings.Theme, settings.Difficulty, settings.QuestionCount)
	if genErr == nil && len(questions) == 0 {
		genErr = domain.ErrNoQuestionsAvailable
	}
	ev, err := game.finishStart(epoch, questions, genErr)
	if err != nil {
		s.log.Warn("quiz start failed", "game", gameID, "theme", settings.Theme, "err", err)
		return domain.GameView{}, err
	}
	s.log.Info("quiz started", "game", gameID, "theme", settings.Theme, "difficulty", settings.Difficulty, "questions", len(questions))
	s.publish(game, ev)
	return ev.View, nil
}

// RecordAnswer stores a player's option for the current question. Rejected
// answers are logged and leave the session untouched.
func (s *QuizService) RecordAnswer(ctx context.Context, gameID, player string, option int) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, err := game.recordAnswer(player, option)
	if err != nil {
		s.logRejected(gameID, player, option, err)
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	return ev.View, nil
}

// AnswerCurrent answers for the player holding the turn in turn-based games.
func (s *QuizService) AnswerCurrent(ctx context.Context, gameID string, option int) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, err := game.recordCurrent(option)
	if err != nil {
		s.logRejected(gameID, "", option, err)
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	return ev.View, nil
}

// CheckAnswers scores the current question once; repeated calls return the
// unchanged view.
func (s *QuizService) CheckAnswers(ctx context.Context, gameID string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, scored, err := game.check()
	if err != nil {
		return domain.GameView{}, err
	}
	if !scored {
		return game.view(), nil
	}
	s.publish(game, ev)
	return ev.View, nil
}

// Advance shows the next question, or finishes the quiz and records its
// results in history.
func (s *QuizService) Advance(ctx context.Context, gameID string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev, result, err := game.advance()
	if err != nil {
		return domain.GameView{}, err
	}
	s.publish(game, ev)
	if result != nil {
		s.log.Info("quiz finished", "game", gameID, "theme", result.Theme, "players", len(result.Results))
		if err := s.history.SaveResult(ctx, *result); err != nil {
			s.log.Warn("save quiz result failed", "game", gameID, "err", err)
		}
		s.saveSnapshot(ctx, game)
	}
	return ev.View, nil
}

// Reset discards the running quiz and zeroes scores. It is legal at any time.
func (s *QuizService) Reset(ctx context.Context, gameID string) (domain.GameView, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return domain.GameView{}, err
	}
	ev := game.reset()
	s.publish(game, ev)
	s.saveSnapshot(ctx, game)
	return ev.View, nil
}

// Results returns the ranking of a finished game.
func (s *QuizService) Results(ctx context.Context, gameID string) ([]domain.RankedResult, error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.results()
}

// Subscribe returns a channel that receives every event of a game, starting
// with its current state. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, gameID string) (<-chan domain.Event, func(), error) {
	game, err := s.game(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := game.subscribe()
	return ch, cancel, nil
}

// Leave drops a game that has neither players nor subscribers left.
func (s *QuizService) Leave(_ context.Context, gameID string) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return
	}
	if game.IsEmpty() {
		s.games.DeleteIfEmpty(gameID)
	}
}

// History returns recent results, optionally limited to one theme.
func (s *QuizService) History(ctx context.Context, theme string) ([]domain.QuizResult, error) {
	results, err := s.history.RecentResults(ctx, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	if theme == "" {
		return results, nil
	}
	filtered := make([]domain.QuizResult, 0, len(results))
	for _, r := range results {
		if r.Theme == theme {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// TopPlayer reports the player with the most wins in history.
func (s *QuizService) TopPlayer(ctx context.Context, theme string) (domain.TopPlayer, bool, error) {
	results, err := s.history.RecentResults(ctx, s.historyLimit)
	if err != nil {
		return domain.TopPlayer{}, false, fmt.Errorf("recent results: %w", err)
	}
	top, ok := ranking.TopPlayer(results, theme)
	return top, ok, nil
}

// PlayerStats aggregates the history of one player.
func (s *QuizService) PlayerStats(ctx context.Context, name string) (domain.PlayerStats, bool, error) {
	results, err := s.history.RecentResults(ctx, s.historyLimit)
	if err != nil {
		return domain.PlayerStats{}, false, fmt.Errorf("recent results: %w", err)
	}
	stats, ok := ranking.PlayerStats(results, name)
	return stats, ok, nil
}

func (s *QuizService) game(ctx context.Context, gameID string) (*Game, error) {
	if game, ok := s.games.Get(gameID); ok {
		return game, nil
	}
	live, ok := s.games.(LiveGames)
	if !ok || !live.Live(ctx, gameID) {
		return nil, domain.ErrGameNotFound
	}
	if _, err := s.Open(ctx, gameID); err != nil {
		return nil, err
	}
	game, ok := s.games.Get(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	s.log.Info("game rehydrated", "game", gameID)
	return game, nil
}

func (s *QuizService) publish(game *Game, ev domain.Event) {
	s.presenter.Present(game.ID(), ev)
}

func (s *QuizService) saveSnapshot(ctx context.Context, game *Game) {
	if err := s.snapshots.SaveSnapshot(ctx, game.ID(), game.snapshot()); err != nil {
		s.log.Warn("save snapshot failed", "game", game.ID(), "err", err)
	}
}

func (s *QuizService) logRejected(gameID, player string, option int, err error) {
	if errors.Is(err, domain.ErrInvalidAnswer) {
		s.log.Warn("answer rejected", "game", gameID, "player", player, "option", option, "err", err)
		return
	}
	s.log.Debug("answer ignored", "game", gameID, "player", player, "option", option, "err", err)
}
