package domain

import (
	"encoding/json"
	"time"
)

// ThemeMixed spans every configured theme.
const ThemeMixed = "mixed"

// Difficulty of a bank question. DifficultyMixed disables filtering.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

// Valid reports whether d is one of the known difficulties (mixed included).
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed:
		return true
	}
	return false
}

// Question is a raw question bank record.
type Question struct {
	Text             string     `json:"question"`
	CorrectAnswer    string     `json:"correctAnswer"`
	IncorrectAnswers []string   `json:"incorrectAnswers"`
	Category         string     `json:"category,omitempty"`
	Difficulty       Difficulty `json:"difficulty,omitempty"`
	// Options is the legacy bank shape where options[0] is the correct answer.
	Options []string `json:"options,omitempty"`
}

// UnmarshalJSON accepts both "question" and "text" for the question text.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	var raw struct {
		plain
		AltText string `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = Question(raw.plain)
	if q.Text == "" {
		q.Text = raw.AltText
	}
	return nil
}

// QuizQuestion is a session-ready question with shuffled options.
// Options[CorrectIndex] is the correct answer text.
type QuizQuestion struct {
	Text         string     `json:"text"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
}

// Player is a roster entry and its running score.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RankedResult is a player's final standing.
type RankedResult struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// Settings selects what the next quiz is generated from.
type Settings struct {
	Theme         string     `json:"theme"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"questionCount"`
	TurnBased     bool       `json:"turnBased"`
}

// QuizResult is one history entry.
type QuizResult struct {
	GameID        string         `json:"gameId,omitempty"`
	Theme         string         `json:"theme"`
	Difficulty    Difficulty     `json:"difficulty"`
	QuestionCount int            `json:"questionCount"`
	Results       []RankedResult `json:"results"`
	PlayedAt      time.Time      `json:"playedAt"`
}

// SessionSnapshot is the simplified state kept for resume-on-reload.
type SessionSnapshot struct {
	SelectedTheme string         `json:"selectedTheme"`
	Difficulty    Difficulty     `json:"difficulty"`
	QuestionCount int            `json:"questionCount"`
	Players       []string       `json:"players"`
	Scores        map[string]int `json:"scores"`
}

// TopPlayer summarises the player with the most first places.
type TopPlayer struct {
	Name         string  `json:"name"`
	Wins         int     `json:"wins"`
	AverageScore float64 `json:"averageScore"`
	TotalGames   int     `json:"totalGames"`
}

// PlayerStats aggregates one player's history.
type PlayerStats struct {
	TotalGames    int     `json:"totalGames"`
	Wins          int     `json:"wins"`
	TotalPoints   int     `json:"totalPoints"`
	AveragePoints float64 `json:"averagePoints"`
	BestTheme     string  `json:"bestTheme,omitempty"`
	WorstTheme    string  `json:"worstTheme,omitempty"`
}
