package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizzone/internal/domain"
)

func newClockedGame(t *testing.T, now *time.Time) *Game {
	t.Helper()
	game := NewGameWithClock("table-1", func() time.Time { return *now })
	game.init(domain.Settings{Theme: "general", Difficulty: domain.DifficultyMixed, QuestionCount: 1}, nil)
	return game
}

func TestGameStampsUpdatesAndResultsWithClock(t *testing.T) {
	now := time.Date(2024, 11, 22, 18, 0, 0, 0, time.UTC)
	game := newClockedGame(t, &now)

	now = now.Add(time.Minute)
	ev, err := game.addPlayer("Ola")
	require.NoError(t, err)
	assert.Equal(t, now, ev.View.UpdatedAt)

	settings, epoch, err := game.beginStart()
	require.NoError(t, err)
	_, err = game.finishStart(epoch, twoQuestions()[:settings.QuestionCount], nil)
	require.NoError(t, err)
	_, err = game.recordAnswer("Ola", 1)
	require.NoError(t, err)
	_, _, err = game.check()
	require.NoError(t, err)

	now = now.Add(time.Minute)
	ev, result, err := game.advance()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.EventResults, ev.Type)
	assert.Equal(t, now, result.PlayedAt)
	assert.Equal(t, "general", result.Theme)
	assert.Equal(t, []domain.RankedResult{{Name: "Ola", Score: 1, Position: 1}}, result.Results)
}

func TestGameSlowSubscriberKeepsNewestEvents(t *testing.T) {
	now := time.Date(2024, 11, 22, 18, 0, 0, 0, time.UTC)
	game := newClockedGame(t, &now)

	ch, cancel := game.subscribe()
	defer cancel()
	assert.True(t, game.Watched())

	names := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"}
	for _, name := range names {
		_, err := game.addPlayer(name)
		require.NoError(t, err)
	}

	var last domain.Event
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Len(t, last.View.Players, len(names))

	cancel()
	assert.False(t, game.Watched())
	_, open := <-ch
	assert.False(t, open)
}

func TestGameResetDiscardsPendingStart(t *testing.T) {
	now := time.Date(2024, 11, 22, 18, 0, 0, 0, time.UTC)
	game := newClockedGame(t, &now)
	_, err := game.addPlayer("Ola")
	require.NoError(t, err)

	_, epoch, err := game.beginStart()
	require.NoError(t, err)
	game.reset()

	_, err = game.finishStart(epoch, twoQuestions(), nil)
	assert.ErrorIs(t, err, domain.ErrStartAborted)
	assert.Equal(t, StateIdle.String(), game.view().State)
}
