package history

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestIndex_OnDiskReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.bleve")
	idx, err := NewIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(models.ChatEntry{ID: 1, Message: "total revenue", Response: "9000"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	// Existing index is opened, not recreated.
	idx, err = NewIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	hits, err := idx.Search("revenue", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("hits after reopen: %v", hits)
	}
}

func TestIndex_Reset(t *testing.T) {
	idx, err := NewIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Add(models.ChatEntry{ID: 7, Message: "hello world", Response: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Reset(); err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search("hello", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits after reset, got %v", hits)
	}
}

func TestIndex_MatchIsCaseInsensitive(t *testing.T) {
	idx, err := NewIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Add(models.ChatEntry{ID: 2, Message: "Average Blood Pressure", Response: "120/80"}); err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search("blood", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected lowercase query to match, got %v", hits)
	}
}
