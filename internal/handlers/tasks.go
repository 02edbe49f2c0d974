// internal/handlers/tasks.go
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/httpx"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/service"
)

// TaskHandler exposes the task CRUD and transition endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    *models.Priority `json:"priority"`
	AssigneeID  *string          `json:"assignee_id"`
	DueDate     *time.Time       `json:"due_date"`
	Tags        []string         `json:"tags"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), p, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	q := r.URL.Query()
	filter := repository.TaskFilter{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := q.Get("status"); raw != "" {
		status := models.TaskStatus(raw)
		filter.Status = &status
	}
	if raw := q.Get("priority"); raw != "" {
		priority := models.Priority(raw)
		filter.Priority = &priority
	}
	if raw := q.Get("creator_id"); raw != "" {
		filter.CreatorID = &raw
	}
	if raw := q.Get("assignee_id"); raw != "" {
		filter.AssigneeID = &raw
	}
	if raw := q.Get("user_id"); raw != "" {
		filter.UserID = &raw
	}

	tasks, total, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listEnvelope{Items: tasks, Total: total, Limit: limit, Offset: offset})
}

type updateTaskRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Priority      *models.Priority `json:"priority"`
	AssigneeID    *string          `json:"assignee_id"`
	ClearAssignee bool             `json:"clear_assignee"`
	DueDate       *time.Time       `json:"due_date"`
	ClearDueDate  bool             `json:"clear_due_date"`
	Tags          []string         `json:"tags"`
	Version       int64            `json:"version"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), p, chi.URLParam(r, "id"), service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		Tags:          req.Tags,
		Version:       req.Version,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, task)
}

type transitionRequest struct {
	Status  models.TaskStatus `json:"status"`
	Version int64             `json:"version"`
}

func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	task, err := h.tasks.Transition(r.Context(), p, chi.URLParam(r, "id"), req.Status, req.Version)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}
