// Package server provides the HTTP API and chat page for Kotae.
package server

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/history"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Server is the HTTP server for the Kotae API and chat page.
type Server struct {
	chat   *chat.Service
	store  *dataset.Store
	cache  *dataset.Cache
	log    *history.Log
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	chatSvc *chat.Service,
	store *dataset.Store,
	cache *dataset.Cache,
	log *history.Log,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:   chatSvc,
		store:  store,
		cache:  cache,
		log:    log,
		config: cfg,
		logger: logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)
	r.Post("/stop_execution", s.handleStopExecution)
	r.Post("/upload", s.handleUpload)
	r.Post("/delete_file", s.handleDeleteFile)
	r.Post("/clear_chat", s.handleClearChat)
	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/history/search", s.handleHistorySearch)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
