package app

import (
	"fmt"
	"sync"
	"time"

	"quizzone/internal/domain"
	"quizzone/internal/ranking"
)

// Game is one quiz table: a roster, its settings and the current session.
// Every operation takes the game lock and runs to completion, so a game
// behaves like a single event loop no matter how many connections drive it.
type Game struct {
	id  string
	now func() time.Time

	mu          sync.Mutex
	initialized bool
	roster      *Roster
	session     *Session
	settings    domain.Settings
	starting    bool
	epoch       int
	updatedAt   time.Time
	subscribers map[chan domain.Event]struct{}
}

// NewGame is exported for infrastructure layers that need to seed games.
func NewGame(id string) *Game {
	return NewGameWithClock(id, time.Now)
}

// NewGameWithClock allows deterministic timestamps in tests.
func NewGameWithClock(id string, now func() time.Time) *Game {
	roster := NewRoster()
	return &Game{
		id:          id,
		now:         now,
		roster:      roster,
		session:     NewSession(roster),
		updatedAt:   now(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

func (g *Game) ID() string {
	return g.id
}

// IsEmpty reports whether the game has neither players nor subscribers.
func (g *Game) IsEmpty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.Len() == 0 && len(g.subscribers) == 0
}

// Watched reports whether any client is subscribed to the game.
func (g *Game) Watched() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subscribers) > 0
}

// init applies defaults and an optional snapshot the first time a game is opened.
func (g *Game) init(defaults domain.Settings, snapshot *domain.SessionSnapshot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initialized {
		return false
	}
	g.initialized = true
	g.settings = defaults
	if snapshot != nil {
		if snapshot.SelectedTheme != "" {
			g.settings.Theme = snapshot.SelectedTheme
		}
		if snapshot.Difficulty.Valid() {
			g.settings.Difficulty = snapshot.Difficulty
		}
		if snapshot.QuestionCount > 0 {
			g.settings.QuestionCount = snapshot.QuestionCount
		}
		g.roster.restore(snapshot.Players, snapshot.Scores)
	}
	g.session.SetTurnBased(g.settings.TurnBased)
	return true
}

func (g *Game) view() domain.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Game) snapshot() domain.SessionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) addPlayer(name string) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session.Active() || g.starting {
		return domain.Event{}, domain.ErrQuizInProgress
	}
	if _, err := g.roster.Add(name); err != nil {
		return domain.Event{}, err
	}
	return g.broadcastLocked(domain.EventRoster), nil
}

func (g *Game) removePlayer(name string) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session.Active() || g.starting {
		return domain.Event{}, domain.ErrQuizInProgress
	}
	if !g.roster.Remove(name) {
		return domain.Event{}, fmt.Errorf("%w: %q", domain.ErrUnknownPlayer, name)
	}
	return g.broadcastLocked(domain.EventRoster), nil
}

func (g *Game) configure(settings domain.Settings) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session.Active() || g.starting {
		return domain.Event{}, domain.ErrQuizInProgress
	}
	g.settings = settings
	g.session.SetTurnBased(settings.TurnBased)
	return g.broadcastLocked(domain.EventSettings), nil
}

// beginStart reserves the game for question generation. Only one start may be
// pending; the returned epoch detects a reset during generation.
func (g *Game) beginStart() (domain.Settings, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.starting {
		return domain.Settings{}, 0, domain.ErrStartInProgress
	}
	if g.session.Active() {
		return domain.Settings{}, 0, domain.ErrQuizInProgress
	}
	if g.roster.Len() == 0 {
		return domain.Settings{}, 0, domain.ErrNoPlayers
	}
	g.starting = true
	return g.settings, g.epoch, nil
}

func (g *Game) finishStart(epoch int, questions []domain.QuizQuestion, genErr error) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != epoch {
		return domain.Event{}, domain.ErrStartAborted
	}
	g.starting = false
	if genErr != nil {
		return domain.Event{}, genErr
	}
	if err := g.session.Start(questions); err != nil {
		return domain.Event{}, err
	}
	return g.broadcastLocked(domain.EventQuestion), nil
}

func (g *Game) recordAnswer(player string, option int) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.session.RecordAnswer(player, option); err != nil {
		return domain.Event{}, err
	}
	return g.broadcastLocked(domain.EventAnswer), nil
}

func (g *Game) recordCurrent(option int) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.session.RecordCurrent(option); err != nil {
		return domain.Event{}, err
	}
	return g.broadcastLocked(domain.EventAnswer), nil
}

func (g *Game) check() (domain.Event, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, scored, err := g.session.CheckAnswers()
	if err != nil || !scored {
		return domain.Event{}, false, err
	}
	return g.broadcastLocked(domain.EventScoreboard), true, nil
}

// advance moves to the next question. When the quiz finishes it also
// returns the history entry.
func (g *Game) advance() (domain.Event, *domain.QuizResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	finished, err := g.session.Advance()
	if err != nil {
		return domain.Event{}, nil, err
	}
	if !finished {
		return g.broadcastLocked(domain.EventQuestion), nil, nil
	}
	result := &domain.QuizResult{
		GameID:        g.id,
		Theme:         g.settings.Theme,
		Difficulty:    g.settings.Difficulty,
		QuestionCount: g.settings.QuestionCount,
		Results:       g.session.Results(),
		PlayedAt:      g.now(),
	}
	return g.broadcastLocked(domain.EventResults), result, nil
}

func (g *Game) reset() domain.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
	g.starting = false
	g.session.Reset()
	return g.broadcastLocked(domain.EventReset)
}

func (g *Game) results() ([]domain.RankedResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session.State() != StateFinished {
		return nil, fmt.Errorf("%w: quiz not finished", domain.ErrInvalidTransition)
	}
	return g.session.Results(), nil
}

func (g *Game) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	ch <- domain.Event{Type: domain.EventState, View: g.viewLocked()}
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) broadcastLocked(typ domain.EventType) domain.Event {
	g.updatedAt = g.now()
	ev := domain.Event{Type: typ, View: g.viewLocked()}
	for ch := range g.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event rather than block the game.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
	return ev
}

func (g *Game) viewLocked() domain.GameView {
	players := g.roster.Players()
	view := domain.GameView{
		GameID:     g.id,
		State:      g.session.State().String(),
		Settings:   g.settings,
		Players:    players,
		Scoreboard: ranking.Rank(players),
		Checked:    g.session.Checked(),
		UpdatedAt:  g.updatedAt,
	}

	if q, ok := g.session.Question(); ok {
		qv := &domain.QuestionView{
			Number:     g.session.Index() + 1,
			Total:      g.session.Total(),
			Text:       q.Text,
			Options:    q.Options,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		}
		answers := g.session.Answers()
		for _, name := range g.roster.Names() {
			if _, ok := answers[name]; ok {
				view.Answered = append(view.Answered, name)
			}
		}
		if g.session.Checked() {
			correct := q.CorrectIndex
			qv.CorrectIndex = &correct
			view.Answers = answers
		}
		view.Question = qv
		view.AllAnswered = g.session.AllAnswered()
		if g.settings.TurnBased {
			view.CurrentTurn, _ = g.session.CurrentTurn()
		}
	}
	if g.session.State() == StateFinished {
		view.Results = g.session.Results()
	}
	return view
}

func (g *Game) snapshotLocked() domain.SessionSnapshot {
	scores := make(map[string]int, g.roster.Len())
	for _, p := range g.roster.Players() {
		scores[p.Name] = p.Score
	}
	return domain.SessionSnapshot{
		SelectedTheme: g.settings.Theme,
		Difficulty:    g.settings.Difficulty,
		QuestionCount: g.settings.QuestionCount,
		Players:       g.roster.Names(),
		Scores:        scores,
	}
}
