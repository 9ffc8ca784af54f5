package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

// Log is the append-only conversation record. Writes go to persistent storage;
// the keyword index shadows them and is best-effort (index failures are logged
// and never surfaced to callers).
type Log struct {
	storage storage.Storage
	index   *Index
	logger  *zap.Logger
}

// NewLog creates a conversation log over st. index may be nil to disable search.
func NewLog(st storage.Storage, index *Index, logger *zap.Logger) *Log {
	return &Log{storage: st, index: index, logger: logger}
}

// Append persists one (message, response) turn and indexes it.
func (l *Log) Append(ctx context.Context, message, response string) error {
	id, err := l.storage.AppendEntry(ctx, message, response)
	if err != nil {
		return err
	}
	if l.index != nil {
		entry := models.ChatEntry{ID: id, Message: message, Response: response}
		if err := l.index.Add(entry); err != nil {
			l.logger.Warn("history index add failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	return nil
}

// All returns the full conversation in insertion order.
func (l *Log) All(ctx context.Context) ([]models.ChatEntry, error) {
	return l.storage.ListEntries(ctx)
}

// Count returns the number of entries.
func (l *Log) Count(ctx context.Context) (int64, error) {
	return l.storage.CountEntries(ctx)
}

// Clear deletes all entries and resets the index.
func (l *Log) Clear(ctx context.Context) error {
	if err := l.storage.ClearEntries(ctx); err != nil {
		return err
	}
	if l.index != nil {
		if err := l.index.Reset(); err != nil {
			l.logger.Warn("history index reset failed", zap.Error(err))
		}
	}
	return nil
}

// Search runs a keyword query over the log and resolves hits to entries.
// Returns nil when no index is configured.
func (l *Log) Search(ctx context.Context, query string, limit int) ([]models.HistoryHit, error) {
	if l.index == nil {
		return nil, nil
	}
	hits, err := l.index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.HistoryHit, 0, len(hits))
	for _, hit := range hits {
		entry, err := l.storage.GetEntry(ctx, hit.ID)
		if err != nil {
			// Index can briefly trail storage after a clear; skip orphans.
			continue
		}
		out = append(out, models.HistoryHit{Entry: *entry, Score: hit.Score})
	}
	return out, nil
}
