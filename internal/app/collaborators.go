package app

import (
	"context"
	"log/slog"

	"quizzone/internal/domain"
)

// GameRepository abstracts where live games are kept (in-memory, Redis-marked, etc).
type GameRepository interface {
	GetOrCreate(gameID string) *Game
	Get(gameID string) (*Game, bool)
	DeleteIfEmpty(gameID string)
}

// LiveGames is implemented by repositories shared between instances. A game
// that is live elsewhere but unknown locally is rebuilt from its snapshot.
type LiveGames interface {
	Live(ctx context.Context, gameID string) bool
}

// QuestionGenerator produces the ordered question list of a new session.
type QuestionGenerator interface {
	Generate(ctx context.Context, theme string, difficulty domain.Difficulty, count int) ([]domain.QuizQuestion, error)
}

// HistoryStore keeps finished quiz results, newest first.
type HistoryStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
	RecentResults(ctx context.Context, limit int) ([]domain.QuizResult, error)
}

// SnapshotStore keeps the resumable configuration of a game.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, gameID string, snapshot domain.SessionSnapshot) error
	LoadSnapshot(ctx context.Context, gameID string) (domain.SessionSnapshot, bool, error)
}

// Presenter is told about every state change. Its work is not awaited for results.
type Presenter interface {
	Present(gameID string, event domain.Event)
}

// NopHistory discards results.
type NopHistory struct{}

func (NopHistory) SaveResult(context.Context, domain.QuizResult) error { return nil }

func (NopHistory) RecentResults(context.Context, int) ([]domain.QuizResult, error) {
	return nil, nil
}

// NopSnapshots never stores anything.
type NopSnapshots struct{}

func (NopSnapshots) SaveSnapshot(context.Context, string, domain.SessionSnapshot) error { return nil }

func (NopSnapshots) LoadSnapshot(context.Context, string) (domain.SessionSnapshot, bool, error) {
	return domain.SessionSnapshot{}, false, nil
}

// NopPresenter ignores events.
type NopPresenter struct{}

func (NopPresenter) Present(string, domain.Event) {}

// LogPresenter writes every event at debug level.
type LogPresenter struct {
	Log *slog.Logger
}

func (p LogPresenter) Present(gameID string, event domain.Event) {
	if p.Log == nil {
		return
	}
	p.Log.Debug("game event",
		"game", gameID,
		"type", event.Type,
		"state", event.View.State,
		"players", len(event.View.Players),
	)
}
