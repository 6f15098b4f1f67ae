package domain

import "errors"

var (
	// ErrEmptyQuiz is returned when a session is started without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrNoQuestionsAvailable indicates no theme produced a usable question pool.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrInvalidAnswer covers unknown players and out-of-range options.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidTransition is returned when an operation is not legal in the current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrGameNotFound is returned when a game has not been created.
	ErrGameNotFound    = errors.New("game not found")
	ErrDuplicatePlayer = errors.New("player already exists")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrEmptyPlayerName = errors.New("player name is empty")
	ErrNoPlayers       = errors.New("at least one player is required")
	// ErrQuizInProgress rejects roster and settings changes while a session runs.
	ErrQuizInProgress = errors.New("quiz in progress")
	// ErrStartInProgress rejects a start while a previous start is still generating.
	ErrStartInProgress = errors.New("quiz start already in progress")
	// ErrStartAborted is returned when the game was reset while questions were generated.
	ErrStartAborted         = errors.New("quiz start aborted by reset")
	ErrInvalidQuestionCount = errors.New("question count must be positive")
	ErrInvalidDifficulty    = errors.New("unknown difficulty")
)
