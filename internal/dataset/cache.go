package dataset

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// Cache holds the one parsed in-memory table behind a read/write lock.
// The published value is swapped whole, so readers never observe a
// half-written table.
type Cache struct {
	mu     sync.RWMutex
	table  *models.Table
	store  *Store
	logger *zap.Logger
}

// NewCache creates an empty cache over the given store.
func NewCache(store *Store, logger *zap.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// Reload reads the current filename from the store and publishes its parsed
// table. On a missing pointer, missing file, or parse failure it publishes nil
// rather than leaving a stale value; failures never escape this boundary.
func (c *Cache) Reload(ctx context.Context) {
	current, err := c.store.Current(ctx)
	if err != nil {
		c.logger.Error("cache reload: read pointer failed", zap.Error(err))
		c.publish(nil)
		return
	}
	if current == "" {
		c.publish(nil)
		return
	}
	path := c.store.Path(current)
	if _, err := os.Stat(path); err != nil {
		c.logger.Warn("cache reload: dataset file missing", zap.String("path", path))
		c.publish(nil)
		return
	}
	table, err := LoadTable(path)
	if err != nil {
		c.logger.Warn("cache reload: parse failed", zap.String("path", path), zap.Error(err))
		c.publish(nil)
		return
	}
	c.publish(table)
	c.logger.Info("dataset loaded into cache",
		zap.String("filename", current),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()),
	)
}

// Read returns the currently published table, or nil when no dataset is loaded.
func (c *Cache) Read() *models.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

func (c *Cache) publish(table *models.Table) {
	c.mu.Lock()
	c.table = table
	c.mu.Unlock()
}
