package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStorage_CurrentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	got, err := store.CurrentFile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("expected empty pointer, got %q", got)
	}

	if err := store.SetCurrentFile(ctx, "patients.csv"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.CurrentFile(ctx)
	if got != "patients.csv" {
		t.Errorf("expected patients.csv, got %q", got)
	}

	// Replacing the pointer leaves exactly one value.
	if err := store.SetCurrentFile(ctx, "orders.csv"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.CurrentFile(ctx)
	if got != "orders.csv" {
		t.Errorf("expected orders.csv, got %q", got)
	}

	// Idempotent under repeated identical calls.
	if err := store.SetCurrentFile(ctx, "orders.csv"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.CurrentFile(ctx)
	if got != "orders.csv" {
		t.Errorf("expected orders.csv after repeat, got %q", got)
	}

	if err := store.ClearCurrentFile(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = store.CurrentFile(ctx)
	if got != "" {
		t.Errorf("expected empty pointer after clear, got %q", got)
	}
}

func TestSQLiteStorage_Entries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	id1, err := store.AppendEntry(ctx, "how many rows?", "42")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := store.AppendEntry(ctx, "average age?", "57.3")
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Errorf("ids should increase: %d then %d", id1, id2)
	}

	entries, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "how many rows?" || entries[1].Message != "average age?" {
		t.Errorf("entries out of order: %+v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetEntry(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Response != "42" {
		t.Errorf("got %q", got.Response)
	}

	n, err := store.CountEntries(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountEntries: %v, %d", err, n)
	}

	if err := store.ClearEntries(ctx); err != nil {
		t.Fatal(err)
	}
	entries, _ = store.ListEntries(ctx)
	if len(entries) != 0 {
		t.Errorf("expected 0 entries after clear, got %d", len(entries))
	}
	if _, err := store.GetEntry(ctx, id1); err == nil {
		t.Error("expected error for cleared entry")
	}
}
