package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Strangekim/jabdonsani/internal/batch"
	"github.com/Strangekim/jabdonsani/internal/store"
	"github.com/Strangekim/jabdonsani/pkg/crawler"
)

// Server provides the HTTP API.
type Server struct {
	store  store.Store
	runner *batch.Runner
	logger *zap.SugaredLogger
	port   int
}

// New creates a new HTTP server.
func New(s store.Store, runner *batch.Runner, logger *zap.SugaredLogger, port int) *Server {
	if port == 0 {
		port = 4000
	}
	return &Server{
		store:  s,
		runner: runner,
		logger: logger,
		port:   port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/batch/crawl", s.handleCrawl)
	mux.HandleFunc("/api/batch/status", s.handleStatus)
	mux.HandleFunc("/api/v1/trends", s.handleTrends)

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Infow("server listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCrawl launches a batch job and returns immediately; progress
// is visible through /api/batch/status.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	jobID, err := s.runner.Start(r.Context())
	if errors.Is(err, batch.ErrAlreadyRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "batch job already running"})
		return
	}
	if err != nil {
		s.logger.Errorw("batch start failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": store.JobRunning,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	job, err := s.store.LatestJob(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if job == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "none"})
		return
	}

	resp := map[string]any{
		"job_id":          job.ID,
		"status":          job.Status,
		"started_at":      job.StartedAt.Format(time.RFC3339),
		"items_collected": job.ItemsCollected,
		"errors":          job.Errors,
	}
	if job.CompletedAt.Valid {
		resp["completed_at"] = job.CompletedAt.Time.Format(time.RFC3339)
	}
	if job.ErrorLog.Valid {
		resp["error_log"] = job.ErrorLog.String
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.ListOpts{Limit: 50}
	if f := r.URL.Query().Get("field"); f != "" {
		field := crawler.Field(f)
		if !crawler.ValidField(field) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown field: " + f})
			return
		}
		opts.Field = field
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	trends, err := s.store.ListTrends(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  trends,
		"count": len(trends),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
