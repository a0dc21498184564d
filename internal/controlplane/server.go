package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ferenimedez-stab/Focus-Breaker/internal/models"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/session"
	"github.com/ferenimedez-stab/Focus-Breaker/internal/store"
)

// Version is the daemon version reported by /health.
const Version = "0.3.1"

// Server provides the HTTP API for FocusBreaker.
type Server struct {
	service *Service
	store   *store.Store
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, st *store.Store, addr string) *Server {
	return &Server{
		service: service,
		store:   st,
		addr:    addr,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	// Session endpoints
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionByID)

	// Stats endpoints
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/streaks", s.handleStreaks)
	mux.HandleFunc("/settings", s.handleSettings)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting FocusBreaker daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// HealthResponse is the /health payload.
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

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		health.OK = false
		health.DB = err.Error()
		writeJSONStatus(w, http.StatusServiceUnavailable, health)
		return
	}

	writeJSON(w, health)
}

// writeError maps domain errors onto HTTP status codes: rejected input is
// 400, operations illegal in the current state or mode are 409.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case session.IsValidation(err):
		status = http.StatusBadRequest
	case session.IsState(err), errors.Is(err, ErrNotActive), errors.Is(err, ErrTaskHasSession):
		status = http.StatusConflict
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// --- Task Handlers ---

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

type createTaskRequest struct {
	Name             string      `json:"name"`
	AllocatedMinutes int         `json:"allocated_minutes"`
	Mode             models.Mode `json:"mode"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModeNormal
	}

	task, err := s.service.CreateTask(req.Name, req.AllocatedMinutes, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks()
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, tasks)
}

// handleTaskByID handles /tasks/{id} and /tasks/{id}/sessions
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
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "sessions" && r.Method == http.MethodGet:
		s.getTaskSessions(w, r, taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.GetTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	if task == nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.DeleteTask(taskID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"deleted"}`))
}

func (s *Server) getTaskSessions(w http.ResponseWriter, r *http.Request, taskID string) {
	sessions, err := s.service.ListSessionsForTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.WorkSession{}
	}
	writeJSON(w, sessions)
}

// --- Session Handlers ---

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess, err := s.service.StartSession(req.TaskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sess)
}

// handleSessionByID handles /sessions/active and /sessions/{id}/*
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	if parts[0] == "active" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, s.service.ActiveStatus())
		return
	}

	sessionID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	if r.Method == http.MethodGet {
		switch action {
		case "":
			s.getSession(w, r, sessionID)
		case "breaks":
			s.getSessionBreaks(w, r, sessionID)
		case "events":
			s.getSessionEvents(w, r, sessionID)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "snooze":
		s.snoozeBreak(w, r, sessionID)
	case "skip":
		s.breakAction(w, sessionID, s.service.SkipBreak, "no break to skip")
	case "take":
		s.breakAction(w, sessionID, s.service.TakeBreak, "no break to take")
	case "extend":
		s.extendSession(w, r, sessionID)
	case "exit":
		s.actOnSession(w, sessionID, s.service.EmergencyExit)
	case "complete":
		s.actOnSession(w, sessionID, s.service.CompleteSession)
	case "abandon":
		s.actOnSession(w, sessionID, s.service.AbandonSession)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := s.service.GetSession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sess)
}

func (s *Server) getSessionBreaks(w http.ResponseWriter, r *http.Request, sessionID string) {
	breaks, err := s.service.ListBreaksForSession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if breaks == nil {
		breaks = []models.Break{}
	}
	writeJSON(w, breaks)
}

func (s *Server) getSessionEvents(w http.ResponseWriter, r *http.Request, sessionID string) {
	events, err := s.service.ListEventsForSession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, events)
}

// breakActionResponse reports whether a break action was honored. Refusal,
// through an exhausted allowance or an empty schedule, is a normal outcome,
// not an error.
type breakActionResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) snoozeBreak(w http.ResponseWriter, r *http.Request, sessionID string) {
	ok, err := s.service.SnoozeBreak(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := breakActionResponse{OK: ok}
	if !ok {
		resp.Reason = "no snooze passes remaining"
	}
	writeJSON(w, resp)
}

func (s *Server) breakAction(w http.ResponseWriter, sessionID string, op func(string) (bool, error), refusal string) {
	ok, err := op(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := breakActionResponse{OK: ok}
	if !ok {
		resp.Reason = refusal
	}
	writeJSON(w, resp)
}

func (s *Server) extendSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req struct {
		ExtraMinutes int `json:"extra_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.service.ExtendSession(sessionID, req.ExtraMinutes); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"extended"}`))
}

func (s *Server) actOnSession(w http.ResponseWriter, sessionID string, op func(string) error) {
	if err := op(sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// --- Stats Handlers ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	report, err := s.service.GetStats(time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	streaks, err := s.service.ListStreaks()
	if err != nil {
		writeError(w, err)
		return
	}
	if streaks == nil {
		streaks = []models.Streak{}
	}
	writeJSON(w, streaks)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		set, err := s.service.GetSettings()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, set)
	case http.MethodPut:
		var set models.Settings
		if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.service.UpdateSettings(set); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, set)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
