package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"daily-quiz-bot/internal/domain"
)

func TestScoreStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "scores.json")
	store, err := NewScoreStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty ledger, got %v", loaded)
	}

	want := map[string]domain.ScoreEntry{
		"913": {Correct: 2, Total: 2},
		"414": {Correct: 1, Total: 4},
	}
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, _ := NewScoreStore(path)
	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 2 || got["913"] != want["913"] || got["414"] != want["414"] {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := store.Save(context.Background(), map[string]domain.ScoreEntry{}); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, _ = store.Load(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected cleared ledger, got %v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected only the score file to remain, got %d entries", len(entries))
	}
}

func TestScoreStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, _ := NewScoreStore(path)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
