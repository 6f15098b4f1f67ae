package app

import (
	"fmt"
	"maps"
	"slices"

	"quizzone/internal/domain"
	"quizzone/internal/ranking"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateAnswering
	StateChecked
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnswering:
		return "answering"
	case StateChecked:
		return "checked"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session runs one quiz over a roster it does not own. It is not safe for
// concurrent use; Game serialises access.
type Session struct {
	roster    *Roster
	turnBased bool

	state     State
	questions []domain.QuizQuestion
	index     int
	turn      int
	answers   map[string]int
	results   []domain.RankedResult
}

func NewSession(roster *Roster) *Session {
	return &Session{
		roster:  roster,
		answers: make(map[string]int),
	}
}

// SetTurnBased enables the turn pointer that follows the answering player.
func (s *Session) SetTurnBased(on bool) {
	s.turnBased = on
}

// Start begins a quiz over questions and zeroes every score.
func (s *Session) Start(questions []domain.QuizQuestion) error {
	if len(questions) == 0 {
		return domain.ErrEmptyQuiz
	}
	s.questions = slices.Clone(questions)
	s.roster.ResetScores()
	s.index = 0
	s.turn = 0
	s.answers = make(map[string]int)
	s.results = nil
	s.state = StateAnswering
	return nil
}

// RecordAnswer stores or overwrites a player's option for the current question.
// When turn rotation is on and player holds the turn, the turn moves on.
func (s *Session) RecordAnswer(player string, option int) error {
	if s.state != StateAnswering {
		return fmt.Errorf("%w: cannot answer while %s", domain.ErrInvalidTransition, s.state)
	}
	if !s.roster.Has(player) {
		return fmt.Errorf("%w: unknown player %q", domain.ErrInvalidAnswer, player)
	}
	q := s.questions[s.index]
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: option %d outside [0, %d)", domain.ErrInvalidAnswer, option, len(q.Options))
	}

	s.answers[player] = option
	if s.turnBased {
		if current, ok := s.CurrentTurn(); ok && current == player {
			s.turn = (s.turn + 1) % s.roster.Len()
		}
	}
	return nil
}

// RecordCurrent answers on behalf of the player holding the turn.
func (s *Session) RecordCurrent(option int) (string, error) {
	if !s.turnBased {
		return "", fmt.Errorf("%w: turn rotation is off", domain.ErrInvalidTransition)
	}
	player, ok := s.CurrentTurn()
	if !ok {
		return "", fmt.Errorf("%w: no player holds the turn", domain.ErrInvalidTransition)
	}
	return player, s.RecordAnswer(player, option)
}

// CheckAnswers awards one point to every player whose answer is correct and
// returns them in roster order. Scoring happens at most once per question:
// a repeated call returns scored=false and changes nothing.
func (s *Session) CheckAnswers() (correct []string, scored bool, err error) {
	switch s.state {
	case StateChecked:
		return nil, false, nil
	case StateAnswering:
	default:
		return nil, false, fmt.Errorf("%w: cannot check while %s", domain.ErrInvalidTransition, s.state)
	}

	want := s.questions[s.index].CorrectIndex
	for _, name := range s.roster.Names() {
		if got, ok := s.answers[name]; ok && got == want {
			s.roster.award(name)
			correct = append(correct, name)
		}
	}
	s.state = StateChecked
	return correct, true, nil
}

// Advance moves to the next question, or finishes the quiz after the last one
// and ranks the roster.
func (s *Session) Advance() (finished bool, err error) {
	if s.state != StateChecked {
		return false, fmt.Errorf("%w: answers not checked (state %s)", domain.ErrInvalidTransition, s.state)
	}
	if s.index+1 == len(s.questions) {
		s.state = StateFinished
		s.results = ranking.Rank(s.roster.Players())
		return true, nil
	}
	s.index++
	s.turn = 0
	s.answers = make(map[string]int)
	s.state = StateAnswering
	return false, nil
}

// Reset discards the quiz and zeroes every score. It is legal in any state.
func (s *Session) Reset() {
	s.questions = nil
	s.index = 0
	s.turn = 0
	s.answers = make(map[string]int)
	s.results = nil
	s.roster.ResetScores()
	s.state = StateIdle
}

func (s *Session) State() State {
	return s.state
}

// Active reports whether a question is on screen.
func (s *Session) Active() bool {
	return s.state == StateAnswering || s.state == StateChecked
}

func (s *Session) Checked() bool {
	return s.state == StateChecked
}

// Question returns the current question while the session is active.
func (s *Session) Question() (domain.QuizQuestion, bool) {
	if !s.Active() {
		return domain.QuizQuestion{}, false
	}
	return s.questions[s.index], true
}

func (s *Session) Index() int {
	return s.index
}

func (s *Session) Total() int {
	return len(s.questions)
}

// Answers returns a copy of the answers recorded for the current question.
func (s *Session) Answers() map[string]int {
	return maps.Clone(s.answers)
}

// AllAnswered reports whether every rostered player has answered.
func (s *Session) AllAnswered() bool {
	if s.roster.Len() == 0 {
		return false
	}
	for _, name := range s.roster.Names() {
		if _, ok := s.answers[name]; !ok {
			return false
		}
	}
	return true
}

// CurrentTurn returns the player the turn pointer designates.
func (s *Session) CurrentTurn() (string, bool) {
	if !s.Active() || s.roster.Len() == 0 {
		return "", false
	}
	return s.roster.Names()[s.turn%s.roster.Len()], true
}

// Results returns the ranking computed when the quiz finished.
func (s *Session) Results() []domain.RankedResult {
	return slices.Clone(s.results)
}
