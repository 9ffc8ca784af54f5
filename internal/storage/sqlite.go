// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS current_file (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CurrentFile returns the most recently set dataset filename, or "" if never set.
func (s *SQLiteStorage) CurrentFile(ctx context.Context) (string, error) {
	var filename string
	err := s.db.QueryRowContext(ctx,
		`SELECT filename FROM current_file ORDER BY id DESC LIMIT 1`,
	).Scan(&filename)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return filename, nil
}

// SetCurrentFile replaces the dataset pointer. The pointer is definitionally a
// single value, so the update is delete-then-insert inside one transaction.
func (s *SQLiteStorage) SetCurrentFile(ctx context.Context, filename string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM current_file`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO current_file (filename) VALUES (?)`, filename); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearCurrentFile removes the dataset pointer.
func (s *SQLiteStorage) ClearCurrentFile(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM current_file`)
	return err
}

// AppendEntry persists one (message, response) turn and returns its id.
func (s *SQLiteStorage) AppendEntry(ctx context.Context, message, response string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (message, response, created_at) VALUES (?, ?, ?)`,
		message, response, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEntry returns a single entry by id.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id int64) (*models.ChatEntry, error) {
	var e models.ChatEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, message, response, created_at FROM chat_history WHERE id = ?`, id,
	).Scan(&e.ID, &e.Message, &e.Response, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chat entry not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns the full conversation log in insertion order.
func (s *SQLiteStorage) ListEntries(ctx context.Context) ([]models.ChatEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message, response, created_at FROM chat_history ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ChatEntry
	for rows.Next() {
		var e models.ChatEntry
		if err := rows.Scan(&e.ID, &e.Message, &e.Response, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearEntries deletes the whole conversation log.
func (s *SQLiteStorage) ClearEntries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_history`)
	return err
}

// CountEntries returns the number of conversation entries.
func (s *SQLiteStorage) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
