// Package main implements a mock Google Tasks API server for local development.
// It serves task lists from a JSON fixture and simulates the OAuth token
// endpoint so grocer can run end to end without real Google credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

type taskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type fixture struct {
	Lists []taskList         `json:"lists"`
	Tasks map[string][]*task `json:"tasks"`
}

// tasksState holds the mutable fixture data behind a mutex so concurrent
// requests see consistent list contents.
type tasksState struct {
	mu     sync.Mutex
	lists  []taskList
	tasks  map[string][]*task
	nextID int
	log    *slog.Logger
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/tasklists.json", "path to task list fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "lists", len(fx.Lists))

	state := newState(fx, logger)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Google Tasks server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(state, logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newState(fx *fixture, logger *slog.Logger) *tasksState {
	s := &tasksState{lists: fx.Lists, tasks: fx.Tasks, nextID: 1000, log: logger}
	if s.tasks == nil {
		s.tasks = map[string][]*task{}
	}
	return s
}

func newMux(state *tasksState, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", tokenHandler(logger))
	mux.HandleFunc("GET /tasks/v1/users/@me/lists", state.handleLists)
	mux.HandleFunc("GET /tasks/v1/lists/{list}/tasks", state.handleListTasks)
	mux.HandleFunc("POST /tasks/v1/lists/{list}/tasks", state.handleInsertTask)
	mux.HandleFunc("PATCH /tasks/v1/lists/{list}/tasks/{task}", state.handlePatchTask)
	mux.HandleFunc("DELETE /tasks/v1/lists/{list}/tasks/{task}", state.handleDeleteTask)
	return mux
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostFormValue("refresh_token") == "" {
			logger.Warn("token request missing refresh_token")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":             "invalid_grant",
				"error_description": "refresh token missing or revoked",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "mock-token-" + strconv.FormatInt(int64(os.Getpid()), 16),
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
		logger.Info("issued mock token")
	}
}

func (s *tasksState) handleLists(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": s.lists})
}

func (s *tasksState) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listID := r.PathValue("list")
	if _, ok := s.tasks[listID]; !ok && !s.hasList(listID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	showCompleted := r.URL.Query().Get("showCompleted") != "false"
	maxResults := 100
	if v, err := strconv.Atoi(r.URL.Query().Get("maxResults")); err == nil && v > 0 {
		maxResults = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("pageToken")); err == nil && v >= 0 {
		offset = v
	}

	var matched []*task
	for _, t := range s.tasks[listID] {
		if !showCompleted && t.Status == "completed" {
			continue
		}
		matched = append(matched, t)
	}

	next := ""
	if offset+maxResults < len(matched) {
		next = strconv.Itoa(offset + maxResults)
	}
	if offset >= len(matched) {
		matched = nil
	} else {
		end := min(offset+maxResults, len(matched))
		matched = matched[offset:end]
	}
	if matched == nil {
		matched = []*task{}
	}

	resp := map[string]any{"items": matched}
	if next != "" {
		resp["nextPageToken"] = next
	}
	writeJSON(w, http.StatusOK, resp)
	s.log.Info("tasks listed", "list", listID, "returned", len(matched))
}

func (s *tasksState) handleInsertTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listID := r.PathValue("list")
	if !s.hasList(listID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}

	var t task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task body"})
		return
	}

	s.nextID++
	t.ID = "task-" + strconv.Itoa(s.nextID)
	if t.Status == "" {
		t.Status = "needsAction"
	}
	s.tasks[listID] = append(s.tasks[listID], &t)

	writeJSON(w, http.StatusOK, &t)
	s.log.Info("task inserted", "list", listID, "title", t.Title)
}

func (s *tasksState) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listID, taskID := r.PathValue("list"), r.PathValue("task")

	var patch task
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task body"})
		return
	}

	for _, t := range s.tasks[listID] {
		if t.ID != taskID {
			continue
		}
		if patch.Status != "" {
			t.Status = patch.Status
		}
		if patch.Title != "" {
			t.Title = patch.Title
		}
		writeJSON(w, http.StatusOK, t)
		s.log.Info("task patched", "list", listID, "task", taskID, "status", t.Status)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (s *tasksState) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listID, taskID := r.PathValue("list"), r.PathValue("task")

	tasks := s.tasks[listID]
	for i, t := range tasks {
		if t.ID != taskID {
			continue
		}
		s.tasks[listID] = append(tasks[:i], tasks[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		s.log.Info("task deleted", "list", listID, "task", taskID)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (s *tasksState) hasList(id string) bool {
	for _, l := range s.lists {
		if l.ID == id {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
