package engine

import (
	"context"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// Mock is a deterministic Engine for tests and offline development. It returns
// a fixed response (or error) and records how it was called.
type Mock struct {
	mu       sync.Mutex
	Response string
	Err      error

	calls     int
	questions []string
	histLens  []int
}

// NewMock creates a mock engine that always answers with response.
func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

// Answer implements Engine.
func (m *Mock) Answer(ctx context.Context, question string, table *models.Table, history []models.ChatEntry) (string, error) {
	m.mu.Lock()
	m.calls++
	m.questions = append(m.questions, question)
	m.histLens = append(m.histLens, len(history))
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns how many times Answer was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastHistoryLen returns the history length passed to the most recent call,
// or -1 when Answer was never invoked.
func (m *Mock) LastHistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.histLens) == 0 {
		return -1
	}
	return m.histLens[len(m.histLens)-1]
}
