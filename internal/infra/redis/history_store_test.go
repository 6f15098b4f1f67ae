package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizzone/internal/domain"
)

func TestHistoryStoreCapsAndOrders(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store := NewHistoryStore(newClient(mr), 3)

	playedAt := time.Date(2024, 5, 17, 18, 0, 0, 0, time.UTC)
	for i := range 4 {
		require.NoError(t, store.SaveResult(ctx, domain.QuizResult{
			GameID:   fmt.Sprintf("g%d", i),
			Theme:    "general",
			Results:  []domain.RankedResult{{Name: "Ola", Score: i, Position: 1}},
			PlayedAt: playedAt,
		}))
	}

	results, err := store.RecentResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "g3", results[0].GameID)
	assert.Equal(t, "g1", results[2].GameID)
	assert.Equal(t, 3, results[0].Results[0].Score)
	assert.True(t, playedAt.Equal(results[0].PlayedAt))

	results, err = store.RecentResults(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHistoryStoreSkipsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store := NewHistoryStore(newClient(mr), 10)

	require.NoError(t, store.SaveResult(ctx, domain.QuizResult{GameID: "ok"}))
	_, err := mr.Lpush(historyKey, "{not json")
	require.NoError(t, err)

	results, err := store.RecentResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].GameID)
}
