package app

import (
	"slices"
	"strings"

	"quizzone/internal/domain"
)

// Roster is the ordered set of players and their scores.
type Roster struct {
	names  []string
	scores map[string]int
}

func NewRoster() *Roster {
	return &Roster{scores: make(map[string]int)}
}

// Add appends a player with a zero score and returns the trimmed name.
func (r *Roster) Add(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrEmptyPlayerName
	}
	if r.Has(name) {
		return "", domain.ErrDuplicatePlayer
	}
	r.names = append(r.names, name)
	r.scores[name] = 0
	return name, nil
}

// Remove drops a player and its score.
func (r *Roster) Remove(name string) bool {
	i := slices.Index(r.names, name)
	if i < 0 {
		return false
	}
	r.names = slices.Delete(r.names, i, i+1)
	delete(r.scores, name)
	return true
}

func (r *Roster) Has(name string) bool {
	_, ok := r.scores[name]
	return ok
}

func (r *Roster) Len() int {
	return len(r.names)
}

func (r *Roster) Names() []string {
	return slices.Clone(r.names)
}

func (r *Roster) Score(name string) int {
	return r.scores[name]
}

// Players returns the roster in join order with current scores.
func (r *Roster) Players() []domain.Player {
	players := make([]domain.Player, 0, len(r.names))
	for _, name := range r.names {
		players = append(players, domain.Player{Name: name, Score: r.scores[name]})
	}
	return players
}

func (r *Roster) ResetScores() {
	for name := range r.scores {
		r.scores[name] = 0
	}
}

func (r *Roster) award(name string) {
	if _, ok := r.scores[name]; ok {
		r.scores[name]++
	}
}

// restore replaces the roster with names and their saved scores, skipping
// blank and duplicate names. Negative scores are clamped to zero.
func (r *Roster) restore(names []string, scores map[string]int) {
	r.names = r.names[:0]
	r.scores = make(map[string]int, len(names))
	for _, raw := range names {
		name, err := r.Add(raw)
		if err != nil {
			continue
		}
		score, ok := scores[raw]
		if !ok {
			score = scores[name]
		}
		r.scores[name] = max(score, 0)
	}
}
