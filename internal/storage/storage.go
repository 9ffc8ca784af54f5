// Package storage defines the persistence interface for the dataset pointer
// and the conversation log.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Storage defines dataset-pointer and chat-history persistence operations.
// Each operation is a short independent transaction; no transaction spans a
// whole request.
type Storage interface {
	// Dataset pointer operations. CurrentFile returns "" when no pointer is set.
	CurrentFile(ctx context.Context) (string, error)
	SetCurrentFile(ctx context.Context, filename string) error
	ClearCurrentFile(ctx context.Context) error

	// Conversation log operations. Entries are returned in creation order.
	AppendEntry(ctx context.Context, message, response string) (int64, error)
	GetEntry(ctx context.Context, id int64) (*models.ChatEntry, error)
	ListEntries(ctx context.Context) ([]models.ChatEntry, error)
	ClearEntries(ctx context.Context) error
	CountEntries(ctx context.Context) (int64, error)

	Close() error
}
