package ranking

import (
	"math"

	"quizzone/internal/domain"
)

// TopPlayer returns the player who most often finished first across history.
// Only the first entry of each result counts, as in the results screen.
// An empty theme considers every result. It returns false when nobody has won.
func TopPlayer(history []domain.QuizResult, theme string) (domain.TopPlayer, bool) {
	type tally struct {
		wins, total, games int
	}
	tallies := map[string]*tally{}
	var order []string

	for _, result := range history {
		if theme != "" && result.Theme != theme {
			continue
		}
		if len(result.Results) == 0 {
			continue
		}
		winner := result.Results[0]
		t, ok := tallies[winner.Name]
		if !ok {
			t = &tally{}
			tallies[winner.Name] = t
			order = append(order, winner.Name)
		}
		if winner.Position == 1 {
			t.wins++
		}
		t.total += winner.Score
		t.games++
	}

	var top domain.TopPlayer
	found := false
	for _, name := range order {
		t := tallies[name]
		if t.wins > top.Wins {
			top = domain.TopPlayer{
				Name:         name,
				Wins:         t.wins,
				AverageScore: round1(float64(t.total) / float64(t.games)),
				TotalGames:   t.games,
			}
			found = true
		}
	}
	return top, found
}

// PlayerStats aggregates the history of one player, including the themes with
// the best and worst average score. It returns false when the player never played.
func PlayerStats(history []domain.QuizResult, name string) (domain.PlayerStats, bool) {
	if name == "" {
		return domain.PlayerStats{}, false
	}

	type themeTally struct {
		games, points int
	}
	themes := map[string]*themeTally{}
	var themeOrder []string
	var stats domain.PlayerStats

	for _, result := range history {
		for _, entry := range result.Results {
			if entry.Name != name {
				continue
			}
			tt, ok := themes[result.Theme]
			if !ok {
				tt = &themeTally{}
				themes[result.Theme] = tt
				themeOrder = append(themeOrder, result.Theme)
			}
			stats.TotalGames++
			tt.games++
			if entry.Position == 1 {
				stats.Wins++
			}
			stats.TotalPoints += entry.Score
			tt.points += entry.Score
			break
		}
	}
	if stats.TotalGames == 0 {
		return domain.PlayerStats{}, false
	}

	stats.AveragePoints = round1(float64(stats.TotalPoints) / float64(stats.TotalGames))
	best, worst := 0.0, math.Inf(1)
	for _, theme := range themeOrder {
		tt := themes[theme]
		avg := float64(tt.points) / float64(tt.games)
		if avg > best {
			best = avg
			stats.BestTheme = theme
		}
		if avg < worst {
			worst = avg
			stats.WorstTheme = theme
		}
	}
	return stats, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
