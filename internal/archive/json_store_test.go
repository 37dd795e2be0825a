package archive

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestJSONStoreAppendAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "battles.json")

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []TurnLog{
		{Round: 1, Player: "red", Action: "attack", Lines: []string{"Infantry #1 hits Archer #2 for 14 (66/80 left)"}, At: at},
		{Round: 1, Player: "red", Action: "end_turn", Lines: []string{"Blue's turn"}, At: at.Add(time.Second)},
	}
	for _, e := range entries {
		if err := store.AppendTurn(ctx, "g1", e); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.LoadLog(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadLog: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i].Action != entries[i].Action || !got[i].At.Equal(entries[i].At) || got[i].Lines[0] != entries[i].Lines[0] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, entries[i], got[i])
		}
	}
}

func TestJSONStoreUnknownGame(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "battles.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	if _, err := store.LoadLog(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJSONStoreHonoursCancelledContext(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "battles.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.AppendTurn(ctx, "g1", TurnLog{Action: "move"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestJSONStoreConcurrentAppendsAllReachDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "battles.json")

	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			if err := store.AppendTurn(ctx, "g1", TurnLog{Round: round, Action: "move"}); err != nil {
				t.Errorf("AppendTurn: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// No Close: the file must already hold the newest snapshot
	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.LoadLog(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadLog: %v", err)
	}
	if len(got) != writers {
		t.Fatalf("expected %d entries on disk, got %d", writers, len(got))
	}
}
