// Package cancel provides cooperative best-effort cancellation for in-flight
// answer requests. Each request begins a fresh token; the stop endpoint stops
// whichever token is currently live.
package cancel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Token is the cancellation handle for one answer request. The pipeline reads
// Stopped at its checkpoints; the controller sets it out of band.
type Token struct {
	id      string
	stopped atomic.Bool
	cancel  context.CancelFunc
}

// ID returns the token's request identifier.
func (t *Token) ID() string {
	return t.id
}

// Stopped reports whether this request has been asked to stop.
func (t *Token) Stopped() bool {
	return t.stopped.Load()
}

// Controller issues tokens and routes stop signals to the most recent live
// request. Safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	current *Token
}

// NewController creates a controller with no live token.
func NewController() *Controller {
	return &Controller{}
}

// Begin starts tracking a new request, replacing any previous live token, and
// returns the token together with a context that is cancelled when the request
// is stopped. Call Release when the request finishes.
func (c *Controller) Begin(ctx context.Context) (*Token, context.Context) {
	reqCtx, cancelFn := context.WithCancel(ctx)
	token := &Token{id: uuid.NewString(), cancel: cancelFn}
	c.mu.Lock()
	c.current = token
	c.mu.Unlock()
	return token, reqCtx
}

// Stop stops the currently live request, if any, and reports whether a token
// was live. The signal targets only the most recent in-flight request.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	token := c.current
	c.mu.Unlock()
	if token == nil {
		return false
	}
	token.stopped.Store(true)
	token.cancel()
	return true
}

// Release ends tracking for token. If it is still the live token, the slot is
// cleared so a later Stop cannot hit a finished request.
func (c *Controller) Release(token *Token) {
	c.mu.Lock()
	if c.current == token {
		c.current = nil
	}
	c.mu.Unlock()
	token.cancel()
}
