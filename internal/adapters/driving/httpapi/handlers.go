package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
	"github.com/custodia-labs/todo-agent/internal/core/services"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

type agentRequest struct {
	Input string `json:"input"`
}

type agentResponse struct {
	Output string `json:"output"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

type upsertTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
	// Fuzzy defaults to true when omitted.
	Fuzzy *bool `json:"fuzzy"`
}

type upsertTaskResponse struct {
	ID       int64        `json:"id"`
	Matched  bool         `json:"matched"`
	Previous *domain.Task `json:"previous,omitempty"`
	Task     *domain.Task `json:"task"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"hello": "AI Todo API",
		"try": map[string]string{
			"health": "GET /health",
			"tasks":  "GET /tasks",
			"agent":  `POST /agent  body: {"input": "show all tasks"}`,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if s.ports.Agent == nil || !s.ports.Agent.Available() {
		respondError(w, http.StatusServiceUnavailable, domain.ErrLLMUnavailable.Error())
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req agentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondError(w, http.StatusBadRequest, "input must not be empty")
		return
	}

	output, err := s.ports.Agent.Run(r.Context(), req.Input)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		logger.With("request_id", RequestIDFrom(r.Context())).Error("agent invocation failed", "err", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, agentResponse{Output: output})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.ports.Tasks.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, err := s.ports.Tasks.Add(r.Context(), req.Title, req.Description, s.dueDate(req.DueDate))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.respondTask(w, r, id, http.StatusCreated)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	s.respondTask(w, r, id, http.StatusOK)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var patch domain.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if patch.IsEmpty() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if due, set := patch.DueDate.Get(); set && strings.TrimSpace(due) != "" {
		patch.DueDate = domain.FromPtr(s.dueDate(&due))
	}

	updated, err := s.ports.Tasks.Update(r.Context(), id, patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, fmt.Sprintf("task %d: %s", id, domain.ErrNotFound))
		return
	}
	s.respondTask(w, r, id, http.StatusOK)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	deleted, err := s.ports.Tasks.Delete(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, fmt.Sprintf("task %d: %s", id, domain.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsertTask(w http.ResponseWriter, r *http.Request) {
	var req upsertTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	res, err := s.ports.Tasks.Upsert(r.Context(), domain.UpsertInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     s.dueDate(req.DueDate),
		Completed:   req.Completed,
		UseFuzzy:    req.Fuzzy == nil || *req.Fuzzy,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	task, err := s.ports.Tasks.Get(r.Context(), res.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upsertTaskResponse{
		ID:       res.ID,
		Matched:  res.Matched,
		Previous: res.Previous,
		Task:     task,
	})
}

func (s *Server) respondTask(w http.ResponseWriter, r *http.Request, id int64, code int) {
	task, err := s.ports.Tasks.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, code, task)
}

func (s *Server) dueDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	return services.NormalizeDueDate(*raw, s.now())
}

// taskID parses the {id} route variable, answering 400 when it overflows.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}
