package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRepository_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewFileRepository(dir)
	ctx := context.Background()

	s, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if !s.IsEmpty() {
		t.Fatalf("expected empty state, got %+v", s)
	}

	s.MarkProcessed("a.jsonl", 3, 70)
	s.MarkProcessed("b.jsonl", 1, 5)
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(repo.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Processed("a.jsonl") || !got.Processed("b.jsonl") {
		t.Errorf("Files = %v", got.Files)
	}
	if got.Processed("c.jsonl") {
		t.Error("c.jsonl reported as processed")
	}
	if got.LastFile != "b.jsonl" {
		t.Errorf("LastFile = %q, want b.jsonl", got.LastFile)
	}
	if got.Batches != 4 || got.Records != 75 {
		t.Errorf("totals = %d/%d, want 4/75", got.Batches, got.Records)
	}
}

func TestFileRepository_Corrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt state file")
	}
}
