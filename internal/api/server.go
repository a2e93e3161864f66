package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/runnerr0/glimpse/internal/category"
)

// Server exposes the engine over localhost HTTP for the host application.
// Call ListenAndServe on the returned http.Server in a goroutine and
// Shutdown it on exit.
type Server struct {
	engine   *Engine
	degraded func() bool
	log      *slog.Logger
}

// NewServer wraps an engine. degraded reports the tracker's write health
// for the healthz endpoint; pass nil when no tracker is running.
func NewServer(engine *Engine, degraded func() bool, log *slog.Logger) *Server {
	if degraded == nil {
		degraded = func() bool { return false }
	}
	return &Server{engine: engine, degraded: degraded, log: log}
}

// HTTPServer returns a configured http.Server bound to addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/categories", s.handleAppCategories)
	mux.HandleFunc("GET /api/settings", s.handleUserSettings)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/assign", s.handleAssign)

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(s.log, mux)}
	s.log.Info("api server configured", slog.String("addr", addr))
	return srv
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// mutationStatus maps resolver failures onto HTTP status codes.
func mutationStatus(resp MutationResponse, err error) int {
	switch {
	case resp.Success:
		return http.StatusOK
	case errors.Is(err, category.ErrDuplicateCategory):
		return http.StatusConflict
	case errors.Is(err, category.ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, category.ErrNotDeletable):
		return http.StatusForbidden
	case errors.Is(err, category.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.degraded() {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// parseDayMs reads the optional ?day=<epoch-ms> query parameter.
func parseDayMs(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	dayMs, err := parseDayMs(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, BreakdownResponse{Success: false, Error: "invalid day parameter"})
		return
	}

	resp := s.engine.GetDailyCategoryBreakdown(r.Context(), dayMs)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	dayMs, err := parseDayMs(r)
	if err != nil || dayMs == nil {
		writeJSON(w, http.StatusBadRequest, TimelineResponse{Data: []TimelineSegment{}, Error: "day parameter is required"})
		return
	}

	resp := s.engine.GetGroupedCategories(r.Context(), *dayMs)
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleAppCategories(w http.ResponseWriter, r *http.Request) {
	resp := s.engine.GetAppCategories(r.Context())
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleUserSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GetUserCategorySettings(r.Context()))
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MutationResponse{Success: false, Error: "invalid request body"})
		return
	}

	resp, err := s.engine.CreateCustomCategory(r.Context(), req.Name, req.Description, req.Color)
	writeJSON(w, mutationStatus(resp, err), resp)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MutationResponse{Success: false, Error: "invalid request body"})
		return
	}

	resp, err := s.engine.UpdateCustomCategory(r.Context(), r.PathValue("id"), req.Name, req.Description, req.Color)
	writeJSON(w, mutationStatus(resp, err), resp)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.DeleteCustomCategory(r.Context(), r.PathValue("id"))
	writeJSON(w, mutationStatus(resp, err), resp)
}

type assignRequest struct {
	App      string `json:"app"`
	Category string `json:"category"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MutationResponse{Success: false, Error: "invalid request body"})
		return
	}

	resp, err := s.engine.AssignAppToCategory(r.Context(), req.App, req.Category)
	writeJSON(w, mutationStatus(resp, err), resp)
}
