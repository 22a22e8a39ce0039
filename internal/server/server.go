// Package server provides the HTTP API the recur CLI and TUI talk to.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/recur/internal/board"
	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/optional"
	"github.com/fentz26/recur/internal/scheduler"
	"github.com/fentz26/recur/internal/store"
	"github.com/fentz26/recur/internal/version"
)

// Store is the part of the storage layer the server talks to directly.
type Store interface {
	Ping(ctx context.Context) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Server provides the HTTP API for recur.
type Server struct {
	board  *board.Board
	store  Store
	clock  scheduler.Clock
	addr   string
	server *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(b *board.Board, st Store, clock scheduler.Clock, addr string) *Server {
	if clock == nil {
		clock = scheduler.SystemClock{}
	}
	return &Server{
		board: b,
		store: st,
		clock: clock,
		addr:  addr,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	mux.HandleFunc("/audit", s.handleAudit)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting recur daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: version.Version,
		Time:    s.clock.Now().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		resp.OK = false
		resp.DB = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByID handles /tasks/{id} and /tasks/{id}/{done,undo}
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getTask(w, r, taskID)
	case action == "" && r.Method == http.MethodPatch:
		s.editTask(w, r, taskID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "done" && r.Method == http.MethodPost:
		s.setDone(w, r, taskID, true)
	case action == "undo" && r.Method == http.MethodPost:
		s.setDone(w, r, taskID, false)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// EntryResponse is a task with its derived state at the daemon's time.
type EntryResponse struct {
	models.Task
	Done bool `json:"done"`
	// PendingSeconds is set for tasks that are not done and have a due time.
	PendingSeconds *int64 `json:"pending_seconds,omitempty"`
	// DueInSeconds is set for done recurring tasks.
	DueInSeconds *int64 `json:"due_in_seconds,omitempty"`
}

func toSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func newEntryResponse(e board.Entry) EntryResponse {
	return EntryResponse{
		Task:           e.Task,
		Done:           e.State.Completed,
		PendingSeconds: optional.Map(e.State.Pending, toSeconds).Ptr(),
		DueInSeconds:   optional.Map(e.State.UntilDue, toSeconds).Ptr(),
	}
}

func (s *Server) entryFor(w http.ResponseWriter, taskID string) {
	entry, err := s.board.Get(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(entry))
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	view := s.board.View()
	entries := make([]EntryResponse, 0, len(view))
	for _, e := range view {
		entries = append(entries, newEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req models.TaskFields
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := s.board.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.board.Get(task.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEntryResponse(entry))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	s.entryFor(w, taskID)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req models.TaskFields
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		writeError(w, fmt.Errorf("edit task: %w", store.ErrEmptyDescription))
		return
	}

	if _, err := s.board.Edit(r.Context(), taskID, req); err != nil {
		writeError(w, err)
		return
	}
	s.entryFor(w, taskID)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.board.Delete(r.Context(), taskID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setDone(w http.ResponseWriter, r *http.Request, taskID string, done bool) {
	if _, err := s.board.SetDone(r.Context(), taskID, done, s.clock.Now()); err != nil {
		writeError(w, err)
		return
	}
	s.entryFor(w, taskID)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.store.ListAudit(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- helpers ---

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}
