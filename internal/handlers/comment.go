package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bloghub/apiserver/internal/services"
	"github.com/bloghub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// CommentHandler provides HTTP handlers for comments.
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler constructs a handler with the provided service.
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CommentRouter registers comment routes on the given router.
func CommentRouter(r chi.Router, commentService *services.CommentService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCommentHandler(commentService)

	r.With(authMiddleware).Post("/create", handler.CreateComment)
	r.Get("/post/{postID}", handler.ListPostComments)
	r.With(authMiddleware).Put("/{commentID}", handler.UpdateComment)
	r.With(authMiddleware).Delete("/{commentID}", handler.DeleteComment)
}

// CommentRequest is the JSON body for comment creation and update.
type CommentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	PostID int    `json:"postId"`
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	req.Author = strings.TrimSpace(req.Author)
	if req.Text == "" || req.Author == "" || req.PostID < 1 {
		writeError(w, http.StatusBadRequest, "text, author and postId are required")
		return
	}

	created, err := h.commentService.Create(r.Context(), userID, types.Comment{
		Text:   req.Text,
		Author: req.Author,
		PostID: req.PostID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *CommentHandler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.commentService.Update(r.Context(), id, strings.TrimSpace(req.Text), strings.TrimSpace(req.Author))
	if err != nil {
		writeServiceError(w, err, "comment not found", "failed to update comment")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "comment not found", "failed to delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
