package history

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/storage"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "kotae.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	idx, err := NewIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return NewLog(st, idx, zap.NewNop())
}

func TestLog_AppendAndAll(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	if err := log.Append(ctx, "first question", "first answer"); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(ctx, "second question", "second answer"); err != nil {
		t.Fatal(err)
	}

	entries, err := log.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "first question" || entries[1].Message != "second question" {
		t.Errorf("entries out of order: %+v", entries)
	}

	n, err := log.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count: %v, %d", err, n)
	}
}

func TestLog_Search(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	if err := log.Append(ctx, "how many patients have diabetes", "around 120"); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(ctx, "plot ages", "CHART_DATA: {}"); err != nil {
		t.Fatal(err)
	}

	hits, err := log.Search(ctx, "diabetes", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Entry.Response != "around 120" {
		t.Errorf("hit entry: %+v", hits[0].Entry)
	}

	// Answers are searchable too.
	hits, err = log.Search(ctx, "120", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected answer match, got %d hits", len(hits))
	}
}

func TestLog_ClearEmptiesStorageAndIndex(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	if err := log.Append(ctx, "question about revenue", "42"); err != nil {
		t.Fatal(err)
	}
	if err := log.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	entries, _ := log.All(ctx)
	if len(entries) != 0 {
		t.Errorf("expected empty log, got %d entries", len(entries))
	}
	hits, err := log.Search(ctx, "revenue", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("index should be reset after clear, got %d hits", len(hits))
	}
}

func TestLog_NoIndex(t *testing.T) {
	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "kotae.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	log := NewLog(st, nil, zap.NewNop())
	ctx := context.Background()

	if err := log.Append(ctx, "q", "a"); err != nil {
		t.Fatal(err)
	}
	hits, err := log.Search(ctx, "q", 10)
	if err != nil {
		t.Fatal(err)
	}
	if hits != nil {
		t.Errorf("search without index should return nil, got %v", hits)
	}
}
