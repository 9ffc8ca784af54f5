// Package chat orchestrates the question-answering pipeline: dataset cache
// read, session history, the answering-engine call with stop checkpoints,
// persistence, and rendering.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cancel"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/history"
	"github.com/hyperjump/kotae/internal/render"
)

// NoDataWarning is returned when a question arrives with no dataset loaded.
// The answering engine is never invoked in that case.
const NoDataWarning = "⚠ No file uploaded or data loaded. Please upload a CSV first."

// Result is the outcome of one Ask call. When Stopped is true the request was
// cancelled at a checkpoint and Response is empty; no history entry was made.
type Result struct {
	Stopped  bool
	Response string
}

// Service runs the ask pipeline over its collaborators.
type Service struct {
	cache  *dataset.Cache
	log    *history.Log
	engine engine.Engine
	cancel *cancel.Controller
	logger *zap.Logger
}

// NewService wires the ask pipeline.
func NewService(cache *dataset.Cache, log *history.Log, eng engine.Engine, ctrl *cancel.Controller, logger *zap.Logger) *Service {
	return &Service{cache: cache, log: log, engine: eng, cancel: ctrl, logger: logger}
}

// Ask answers one question. Failures are soft: engine errors come back as a
// descriptive response string, and a history-append failure never withholds
// the answer from the caller.
func (s *Service) Ask(ctx context.Context, message string) Result {
	token, reqCtx := s.cancel.Begin(ctx)
	defer s.cancel.Release(token)

	s.logger.Debug("ask received", zap.String("request_id", token.ID()), zap.Int("message_len", len(message)))

	table := s.cache.Read()
	if table == nil {
		return Result{Response: NoDataWarning}
	}

	entries, err := s.log.All(reqCtx)
	if err != nil {
		s.logger.Warn("history read failed, answering without session context", zap.Error(err))
		entries = nil
	}

	if token.Stopped() {
		s.logger.Info("ask stopped before engine call", zap.String("request_id", token.ID()))
		return Result{Stopped: true}
	}

	answer, err := s.engine.Answer(reqCtx, message, table, entries)
	if err != nil {
		if token.Stopped() {
			s.logger.Info("ask stopped during engine call", zap.String("request_id", token.ID()))
			return Result{Stopped: true}
		}
		s.logger.Error("answering engine failed", zap.String("request_id", token.ID()), zap.Error(err))
		return Result{Response: fmt.Sprintf("Error getting response: %v", err)}
	}

	if token.Stopped() {
		s.logger.Info("ask stopped after engine call", zap.String("request_id", token.ID()))
		return Result{Stopped: true}
	}

	if err := s.log.Append(ctx, message, answer); err != nil {
		// The user still gets their answer even if history recording fails.
		s.logger.Error("history append failed", zap.Error(err))
	}

	return Result{Response: render.Render(answer)}
}

// Stop signals the in-flight request, if any, to stop at its next checkpoint.
func (s *Service) Stop() bool {
	return s.cancel.Stop()
}
