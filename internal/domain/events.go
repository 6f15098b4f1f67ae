package domain

import "time"

// EventType names a state change published to the presentation layer.
type EventType string

const (
	EventState      EventType = "state"
	EventRoster     EventType = "roster"
	EventSettings   EventType = "settings"
	EventQuestion   EventType = "question"
	EventAnswer     EventType = "answer"
	EventScoreboard EventType = "scoreboard"
	EventResults    EventType = "results"
	EventReset      EventType = "reset"
)

// Event carries the game view at the moment of the change.
type Event struct {
	Type EventType `json:"type"`
	View GameView  `json:"view"`
}

// QuestionView is the current question as shown to players. CorrectIndex is
// only set once answers have been checked.
type QuestionView struct {
	Number       int        `json:"number"`
	Total        int        `json:"total"`
	Text         string     `json:"text"`
	Options      []string   `json:"options"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	CorrectIndex *int       `json:"correctIndex,omitempty"`
}

// GameView is a read-only snapshot of a game.
type GameView struct {
	GameID      string         `json:"gameId"`
	State       string         `json:"state"`
	Settings    Settings       `json:"settings"`
	Players     []Player       `json:"players"`
	Scoreboard  []RankedResult `json:"scoreboard"`
	Question    *QuestionView  `json:"question,omitempty"`
	Answers     map[string]int `json:"answers,omitempty"`
	Answered    []string       `json:"answered,omitempty"`
	AllAnswered bool           `json:"allAnswered"`
	Checked     bool           `json:"checked"`
	CurrentTurn string         `json:"currentTurn,omitempty"`
	Results     []RankedResult `json:"results,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
