package ranking

import (
	"slices"

	"quizzone/internal/domain"
)

// Rank orders players by descending score and assigns competition positions:
// tied players share a position and the next distinct score skips past the tie
// group, so scores 10,10,7 rank 1,1,3. Ties keep roster order.
func Rank(players []domain.Player) []domain.RankedResult {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b domain.Player) int {
		return b.Score - a.Score
	})

	results := make([]domain.RankedResult, 0, len(sorted))
	position, skip := 0, 0
	for i, p := range sorted {
		switch {
		case i == 0:
			position = 1
		case p.Score == sorted[i-1].Score:
			skip++
		default:
			position += skip + 1
			skip = 0
		}
		results = append(results, domain.RankedResult{
			Name:     p.Name,
			Score:    p.Score,
			Position: position,
		})
	}
	return results
}
