package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizzone/internal/domain"
)

func twoQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{Text: "Capital of Norway?", Options: []string{"Bergen", "Oslo", "Trondheim"}, CorrectIndex: 1},
		{Text: "2 + 2?", Options: []string{"4", "5"}, CorrectIndex: 0},
	}
}

func newTestSession(t *testing.T, names ...string) (*Session, *Roster) {
	t.Helper()
	roster := NewRoster()
	for _, name := range names {
		_, err := roster.Add(name)
		require.NoError(t, err)
	}
	return NewSession(roster), roster
}

func TestSessionFullRound(t *testing.T) {
	s, roster := newTestSession(t, "Ola", "Kari")
	require.NoError(t, s.Start(twoQuestions()))
	assert.Equal(t, StateAnswering, s.State())

	require.NoError(t, s.RecordAnswer("Ola", 1))
	require.NoError(t, s.RecordAnswer("Kari", 0))
	assert.True(t, s.AllAnswered())

	correct, scored, err := s.CheckAnswers()
	require.NoError(t, err)
	assert.True(t, scored)
	assert.Equal(t, []string{"Ola"}, correct)
	assert.Equal(t, 1, roster.Score("Ola"))
	assert.Equal(t, StateChecked, s.State())

	finished, err := s.Advance()
	require.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, 1, s.Index())
	assert.Empty(t, s.Answers())

	require.NoError(t, s.RecordAnswer("Kari", 0))
	_, _, err = s.CheckAnswers()
	require.NoError(t, err)

	finished, err = s.Advance()
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, []domain.RankedResult{
		{Name: "Ola", Score: 1, Position: 1},
		{Name: "Kari", Score: 1, Position: 1},
	}, s.Results())
}

func TestSessionStartRejectsEmptyQuiz(t *testing.T) {
	s, _ := newTestSession(t, "Ola")
	assert.ErrorIs(t, s.Start(nil), domain.ErrEmptyQuiz)
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionStartZeroesScores(t *testing.T) {
	s, roster := newTestSession(t, "Ola")
	roster.award("Ola")
	require.NoError(t, s.Start(twoQuestions()))
	assert.Equal(t, 0, roster.Score("Ola"))
}

func TestSessionCheckScoresOnce(t *testing.T) {
	s, roster := newTestSession(t, "Ola")
	require.NoError(t, s.Start(twoQuestions()))
	require.NoError(t, s.RecordAnswer("Ola", 1))

	_, scored, err := s.CheckAnswers()
	require.NoError(t, err)
	require.True(t, scored)

	correct, scored, err := s.CheckAnswers()
	require.NoError(t, err)
	assert.False(t, scored)
	assert.Nil(t, correct)
	assert.Equal(t, 1, roster.Score("Ola"))
}

func TestSessionAnswerOverwrites(t *testing.T) {
	s, roster := newTestSession(t, "Ola")
	require.NoError(t, s.Start(twoQuestions()))
	require.NoError(t, s.RecordAnswer("Ola", 0))
	require.NoError(t, s.RecordAnswer("Ola", 1))
	assert.Equal(t, map[string]int{"Ola": 1}, s.Answers())

	_, _, err := s.CheckAnswers()
	require.NoError(t, err)
	assert.Equal(t, 1, roster.Score("Ola"))
}

func TestSessionRejectsInvalidAnswers(t *testing.T) {
	s, _ := newTestSession(t, "Ola")

	assert.ErrorIs(t, s.RecordAnswer("Ola", 0), domain.ErrInvalidTransition)

	require.NoError(t, s.Start(twoQuestions()))
	testCases := []struct {
		name   string
		player string
		option int
	}{
		{"unknown player", "Per", 0},
		{"negative option", "Ola", -1},
		{"option past the end", "Ola", 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, s.RecordAnswer(tc.player, tc.option), domain.ErrInvalidAnswer)
			assert.Empty(t, s.Answers())
		})
	}

	_, _, err := s.CheckAnswers()
	require.NoError(t, err)
	assert.ErrorIs(t, s.RecordAnswer("Ola", 1), domain.ErrInvalidTransition)
}

func TestSessionIllegalTransitions(t *testing.T) {
	s, _ := newTestSession(t, "Ola")

	_, err := s.Advance()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, _, err = s.CheckAnswers()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, s.Start(twoQuestions()))
	_, err = s.Advance()
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "advance before check")
	assert.Equal(t, 0, s.Index())
}

func TestSessionCheckWithNoAnswersAwardsNothing(t *testing.T) {
	s, roster := newTestSession(t, "Ola", "Kari")
	require.NoError(t, s.Start(twoQuestions()))

	correct, scored, err := s.CheckAnswers()
	require.NoError(t, err)
	assert.True(t, scored)
	assert.Empty(t, correct)
	assert.Equal(t, 0, roster.Score("Ola"))
	assert.Equal(t, 0, roster.Score("Kari"))
}

func TestSessionTurnRotation(t *testing.T) {
	s, _ := newTestSession(t, "Ola", "Kari", "Per")
	s.SetTurnBased(true)
	require.NoError(t, s.Start(twoQuestions()))

	turn, ok := s.CurrentTurn()
	require.True(t, ok)
	assert.Equal(t, "Ola", turn)

	// Answering out of turn leaves the pointer alone.
	require.NoError(t, s.RecordAnswer("Per", 0))
	turn, _ = s.CurrentTurn()
	assert.Equal(t, "Ola", turn)

	player, err := s.RecordCurrent(1)
	require.NoError(t, err)
	assert.Equal(t, "Ola", player)
	turn, _ = s.CurrentTurn()
	assert.Equal(t, "Kari", turn)

	_, _, err = s.CheckAnswers()
	require.NoError(t, err)
	_, err = s.Advance()
	require.NoError(t, err)

	turn, _ = s.CurrentTurn()
	assert.Equal(t, "Ola", turn, "turn resets on a new question")
}

func TestSessionRecordCurrentRequiresTurnMode(t *testing.T) {
	s, _ := newTestSession(t, "Ola")
	require.NoError(t, s.Start(twoQuestions()))

	_, err := s.RecordCurrent(0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSessionResetFromAnyState(t *testing.T) {
	s, roster := newTestSession(t, "Ola")
	require.NoError(t, s.Start(twoQuestions()))
	require.NoError(t, s.RecordAnswer("Ola", 1))
	_, _, err := s.CheckAnswers()
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, s.Total())
	assert.Equal(t, 0, roster.Score("Ola"))
	_, ok := s.Question()
	assert.False(t, ok)
}

func TestRosterAddRemove(t *testing.T) {
	r := NewRoster()

	name, err := r.Add("  Ola ")
	require.NoError(t, err)
	assert.Equal(t, "Ola", name)

	_, err = r.Add("Ola")
	assert.ErrorIs(t, err, domain.ErrDuplicatePlayer)
	_, err = r.Add("   ")
	assert.ErrorIs(t, err, domain.ErrEmptyPlayerName)

	_, err = r.Add("Kari")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ola", "Kari"}, r.Names())

	assert.True(t, r.Remove("Ola"))
	assert.False(t, r.Remove("Ola"))
	assert.Equal(t, []domain.Player{{Name: "Kari"}}, r.Players())
}

func TestRosterRestoreSkipsBadEntries(t *testing.T) {
	r := NewRoster()
	r.restore([]string{"Ola", "", "Ola", "Kari"}, map[string]int{"Ola": 3, "Kari": -2})

	assert.Equal(t, []domain.Player{{Name: "Ola", Score: 3}, {Name: "Kari", Score: 0}}, r.Players())
}

func TestRosterRestoreTrimsNames(t *testing.T) {
	r := NewRoster()
	r.restore([]string{" Ola ", "Kari"}, map[string]int{" Ola ": 4, "Kari": 2})

	assert.Equal(t, []domain.Player{{Name: "Ola", Score: 4}, {Name: "Kari", Score: 2}}, r.Players())
}
