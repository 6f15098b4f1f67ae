package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"quizzone/internal/app"
)

func TestGameStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewGameStore(newClient(mr), time.Minute)

	_ = store.GetOrCreate("game-1")
	if !mr.Exists("quiz:game:game-1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected game present")
	}

	store.DeleteIfEmpty("game-1")
	if mr.Exists("quiz:game:game-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestGameStoreGetRenewsLease(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewGameStore(newClient(mr), time.Minute)

	store.GetOrCreate("game-1")
	mr.FastForward(40 * time.Second)
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected game present")
	}
	if ttl := mr.TTL("quiz:game:game-1"); ttl != time.Minute {
		t.Fatalf("expected lease renewed to 1m, got %v", ttl)
	}

	mr.FastForward(40 * time.Second)
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected renewed game to outlive the first lease")
	}
}

func TestGameStoreEvictsIdleGameAfterLeaseExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewGameStore(newClient(mr), time.Minute)

	store.GetOrCreate("game-1")
	mr.FastForward(2 * time.Minute)

	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected expired game to be evicted")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no local games, got %d", store.Len())
	}
}

func TestGameStoreKeepsWatchedGameAfterLeaseExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewGameStore(newClient(mr), time.Minute)
	service := app.NewQuizService(store, nil)
	ctx := context.Background()

	if _, err := service.Open(ctx, "game-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	_, cancel, err := service.Subscribe(ctx, "game-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected watched game to survive")
	}
	if !mr.Exists("quiz:game:game-1") {
		t.Fatalf("expected lease to be taken again")
	}
}

func TestGameStoreLive(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewGameStore(newClient(mr), time.Minute)
	ctx := context.Background()

	if store.Live(ctx, "game-1") {
		t.Fatalf("expected unknown game not to be live")
	}
	if err := mr.Set("quiz:game:game-1", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !store.Live(ctx, "game-1") {
		t.Fatalf("expected leased game to be live")
	}
	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected game held elsewhere not to be local")
	}
}

func TestGameStoreRehydratesGameFromAnotherInstance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newClient(mr)
	snapshots := NewSnapshotStore(client, time.Hour)
	ctx := context.Background()

	first := app.NewQuizService(NewGameStore(client, time.Minute), nil, app.WithSnapshots(snapshots))
	if _, err := first.Open(ctx, "game-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := first.AddPlayer(ctx, "game-1", "Ola"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	secondStore := NewGameStore(client, time.Minute)
	second := app.NewQuizService(secondStore, nil, app.WithSnapshots(snapshots))
	view, err := second.View(ctx, "game-1")
	if err != nil {
		t.Fatalf("view on second instance: %v", err)
	}
	if len(view.Players) != 1 || view.Players[0].Name != "Ola" {
		t.Fatalf("expected roster from snapshot, got %+v", view.Players)
	}
	if secondStore.Len() != 1 {
		t.Fatalf("expected rehydrated game held locally, got %d", secondStore.Len())
	}

	if _, err := second.View(ctx, "game-2"); err == nil {
		t.Fatalf("expected unknown game to stay unknown")
	}
}
