// internal/handlers/comments.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/httpx"
	"github.com/taskhub/taskhub/internal/service"
)

// CommentHandler exposes the comment thread endpoints.
type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), p, chi.URLParam(r, "id"), req.Content, req.ParentID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comments)
}

type editCommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req editCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	comment, err := h.comments.Edit(r.Context(), p, chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clearContent := r.URL.Query().Get("clear_content") == "true"
	comment, err := h.comments.SoftDelete(r.Context(), p, chi.URLParam(r, "commentID"), clearContent)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	comment, err := h.comments.Restore(r.Context(), p, chi.URLParam(r, "commentID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comment)
}
