// Package server exposes the workflow over HTTP: a JSON API, an SSE event
// stream, and a websocket channel for node chat.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	"github.com/felixgeelhaar/forgeflow/internal/domain/export"
	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/sse"
)

// Server is the forgeflow HTTP server.
type Server struct {
	addr       string
	workflows  *application.WorkflowService
	generation *application.GenerationService
	notifier   *application.Notifier
	stream     *sse.SSEHandler
	mission    func() string
	logger     zerolog.Logger
	server     *http.Server
	upgrader   websocket.Upgrader
}

// NewServer wires the HTTP surface over the application services. The
// mission func supplies the current mission prompt for export and reports.
func NewServer(addr string, workflows *application.WorkflowService, generation *application.GenerationService, notifier *application.Notifier, stream *sse.SSEHandler, mission func() string, logger zerolog.Logger) *Server {
	return &Server{
		addr:       addr,
		workflows:  workflows,
		generation: generation,
		notifier:   notifier,
		stream:     stream,
		mission:    mission,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the server until Shutdown or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
	}

	s.logger.Info().Str("addr", s.addr).Msg("forgeflow server starting")
	return s.server.ListenAndServe()
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/workflow", s.handleWorkflow)
	mux.HandleFunc("POST /api/workflow/synthesize", s.handleSynthesize)
	mux.HandleFunc("POST /api/workflow/optimize", s.handleOptimize)
	mux.HandleFunc("POST /api/workflow/save", s.handleSave)
	mux.HandleFunc("POST /api/workflow/load", s.handleLoad)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/board", s.handleBoard)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)

	mux.HandleFunc("POST /api/tasks", s.handleInject)
	mux.HandleFunc("DELETE /api/tasks", s.handleDelete)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /api/tasks/{id}/priority", s.handlePriority)
	mux.HandleFunc("POST /api/tasks/{id}/comments", s.handleComment)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/{subtask}/toggle", s.handleToggleSubtask)
	mux.HandleFunc("POST /api/tasks/{id}/enhance", s.handleEnhance)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/generate", s.handleGenerateSubtasks)
	mux.HandleFunc("POST /api/tasks/{id}/docs", s.handleDocs)

	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/history/undo", s.handleUndo)
	mux.HandleFunc("POST /api/history/redo", s.handleRedo)
	mux.HandleFunc("POST /api/history/jump", s.handleJump)

	mux.Handle("GET /events", s.stream)
	mux.HandleFunc("GET /ws/chat", s.handleChat)

	return s.logRequests(mux)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, projection.ComputeStats(s.workflows.Registry()))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, projection.ComputeBoard(s.workflows.Registry()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, projection.ComputeGraph(s.workflows.Registry(), nil))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "json"
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := export.Render(format, s.workflows.Registry(), s.mission(), time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.notifier.Active())
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	var form application.InjectForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	task, err := s.workflows.Inject(form)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ids := make(map[string]bool, len(body.IDs))
	for _, id := range body.IDs {
		ids[id] = true
	}
	s.workflows.DeleteTasks(ids)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := workflow.ParseStatus(strings.ToUpper(body.Status))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.workflows.SetStatus(r.PathValue("id"), status)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	prio, err := workflow.ParsePriority(strings.ToUpper(body.Priority))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.workflows.SetPriority(r.PathValue("id"), prio)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Author == "" {
		body.Author = "Architect"
	}
	s.workflows.AddComment(r.PathValue("id"), body.Author, body.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	s.workflows.ToggleSubtask(r.PathValue("id"), r.PathValue("subtask"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("prompt is required"))
		return
	}
	if err := s.generation.SynthesizeWorkflow(r.Context(), body.Prompt); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if err := s.generation.OptimizeWorkflow(r.Context()); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if err := s.generation.EnhanceTask(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateSubtasks(w http.ResponseWriter, r *http.Request) {
	if err := s.generation.GenerateSubtasks(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.generation.GenerateNodeDocs(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"docs": docs})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.workflows.Save(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.workflows.Load(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	length, cursor := s.workflows.Timeline()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"length":  length,
		"cursor":  cursor,
		"canUndo": s.workflows.CanUndo(),
		"canRedo": s.workflows.CanRedo(),
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if !s.workflows.Undo() {
		s.writeError(w, http.StatusConflict, fmt.Errorf("nothing to undo"))
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if !s.workflows.Redo() {
		s.writeError(w, http.StatusConflict, fmt.Errorf("nothing to redo"))
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.workflows.JumpTo(body.Index) {
		s.writeError(w, http.StatusConflict, fmt.Errorf("index %d out of range", body.Index))
		return
	}
	s.writeJSON(w, http.StatusOK, s.workflows.Registry())
}

type chatMessage struct {
	Text string `json:"text"`
}

type chatReply struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// handleChat upgrades to a websocket and relays messages to the node's
// owning agent. The task id comes from the "task" query param.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task")
	task, ok := s.workflows.Find(taskID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("task %s not found", taskID))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	owner := task.Owner
	if owner == "" {
		owner = "Nexus_Automaton"
	}
	_ = conn.WriteJSON(chatReply{From: owner, Text: "Synthesizer online. Ready to assist with node operations."})

	for {
		var msg chatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}

		reply, err := s.generation.ChatWithNode(r.Context(), taskID, msg.Text)
		if err != nil {
			reply = "Transmission interrupted."
		}
		if err := conn.WriteJSON(chatReply{From: owner, Text: reply}); err != nil {
			return
		}
	}
}
