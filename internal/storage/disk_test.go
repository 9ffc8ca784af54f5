package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "kotae.db")
	if err := os.WriteFile(dbFile, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	uploads := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploads, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(uploads, "data.csv"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	total, err := DiskUsageBytes(dbFile, uploads)
	if err != nil {
		t.Fatal(err)
	}
	if total != 150 {
		t.Errorf("expected 150 bytes, got %d", total)
	}
}

func TestDiskUsageBytes_MissingAndEmptyPathsSkipped(t *testing.T) {
	total, err := DiskUsageBytes("", filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected 0, got %d", total)
	}
}
