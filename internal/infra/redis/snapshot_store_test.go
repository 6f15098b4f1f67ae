package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizzone/internal/domain"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store := NewSnapshotStore(newClient(mr), time.Hour)

	_, ok, err := store.LoadSnapshot(ctx, "game-1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := domain.SessionSnapshot{
		SelectedTheme: "sports",
		Difficulty:    domain.DifficultyEasy,
		QuestionCount: 4,
		Players:       []string{"Ola", "Kari"},
		Scores:        map[string]int{"Ola": 1, "Kari": 3},
	}
	require.NoError(t, store.SaveSnapshot(ctx, "game-1", want))

	got, ok, err := store.LoadSnapshot(ctx, "game-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Hour, mr.TTL("quiz:snapshot:game-1"))
}

func TestSnapshotStoreRejectsCorruptData(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("quiz:snapshot:game-1", "garbage"))

	_, _, err := NewSnapshotStore(newClient(mr), time.Hour).LoadSnapshot(context.Background(), "game-1")
	assert.Error(t, err)
}
