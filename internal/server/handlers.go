package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/dataset"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

const maxUploadBytes = 64 << 20

type indexPageData struct {
	Filename string
	History  []models.ChatEntry
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := s.store.Current(ctx)
	if err != nil {
		s.logger.Error("index: read pointer failed", zap.Error(err))
	}
	entries, err := s.log.All(ctx)
	if err != nil {
		s.logger.Error("index: read history failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, indexPageData{Filename: current, History: entries}); err != nil {
		s.logger.Error("index: template execute failed", zap.Error(err))
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := s.chat.Ask(r.Context(), req.Message)
	if result.Stopped {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "stopped", "response": nil})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"response": result.Response})
}

func (s *Server) handleStopExecution(w http.ResponseWriter, r *http.Request) {
	s.chat.Stop()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.logger.Warn("upload: parse multipart failed", zap.Error(err))
		s.redirectHome(w, r)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.redirectHome(w, r)
		return
	}
	defer file.Close()
	if !dataset.AllowedFile(header.Filename) {
		s.logger.Warn("upload: file type not allowed", zap.String("filename", header.Filename))
		s.redirectHome(w, r)
		return
	}
	name, err := s.store.SaveUpload(ctx, header.Filename, file)
	if err != nil {
		s.logger.Error("upload: save failed", zap.Error(err))
		s.redirectHome(w, r)
		return
	}
	// History is wiped so the conversation stays consistent with the new dataset.
	if err := s.log.Clear(ctx); err != nil {
		s.logger.Error("upload: clear history failed", zap.Error(err))
	}
	s.cache.Reload(ctx)
	s.logger.Info("dataset uploaded", zap.String("filename", name))
	s.redirectHome(w, r)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.RemoveCurrent(ctx); err != nil {
		s.logger.Error("delete: remove dataset failed", zap.Error(err))
	}
	if err := s.log.Clear(ctx); err != nil {
		s.logger.Error("delete: clear history failed", zap.Error(err))
	}
	s.cache.Reload(ctx)
	s.redirectHome(w, r)
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	if err := s.log.Clear(r.Context()); err != nil {
		s.logger.Error("clear chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.log.Count(ctx)
	if err != nil {
		s.logger.Error("status: count entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	current, err := s.store.Current(ctx)
	if err != nil {
		s.logger.Error("status: read pointer failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"entries":      count,
		"current_file": current,
	}
	if table := s.cache.Read(); table != nil {
		resp["dataset"] = map[string]interface{}{
			"loaded":  true,
			"rows":    table.NumRows(),
			"columns": table.NumColumns(),
		}
	} else {
		resp["dataset"] = map[string]interface{}{"loaded": false}
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.UploadsDir,
		s.config.Storage.HistoryIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistorySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	hits, err := s.log.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("history search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hits == nil {
		hits = []models.HistoryHit{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"hits": hits})
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
