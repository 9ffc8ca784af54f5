// Package engine defines the boundary to the external natural-language
// answering engine and provides an HTTP-backed client.
package engine

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Engine produces a raw textual answer for a question over the current
// dataset, given the conversation so far. The answer may embed an HTML table
// or a chart-data marker; callers classify and render it downstream.
type Engine interface {
	Answer(ctx context.Context, question string, table *models.Table, history []models.ChatEntry) (string, error)
}

// Func adapts an ordinary function to the Engine interface.
type Func func(ctx context.Context, question string, table *models.Table, history []models.ChatEntry) (string, error)

// Answer implements Engine.
func (f Func) Answer(ctx context.Context, question string, table *models.Table, history []models.ChatEntry) (string, error) {
	return f(ctx, question, table, history)
}
