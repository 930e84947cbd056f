package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bloghub/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// PostHandler provides HTTP handlers for posts.
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler constructs a handler with the provided service.
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// PostRouter registers post routes on the given router.
func PostRouter(r chi.Router, postService *services.PostService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewPostHandler(postService)

	r.Get("/", handler.ListPosts)
	r.With(authMiddleware).Post("/create", handler.CreatePost)
	r.Get("/user/{userID}", handler.ListUserPosts)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.GetPost)
		r.With(authMiddleware).Put("/", handler.UpdatePost)
		r.With(authMiddleware).Delete("/", handler.DeletePost)
	})
}

// PostUpsertRequest is the JSON body for post creation and update.
// The photo field carries the bare filename returned by the upload
// endpoint.
type PostUpsertRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Photo       string   `json:"photo"`
	Categories  []string `json:"categories"`
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	posts, err := h.postService.List(r.Context(), search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	posts, err := h.postService.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "post not found", "failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return
	}

	created, err := h.postService.Create(r.Context(), userID, services.PostUpsert{
		Title:       req.Title,
		Description: req.Description,
		Photo:       req.Photo,
		Categories:  req.Categories,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	req, err := decodePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.postService.Update(r.Context(), userID, id, services.PostUpsert{
		Title:       req.Title,
		Description: req.Description,
		Photo:       req.Photo,
		Categories:  req.Categories,
	})
	if err != nil {
		writeServiceError(w, err, "post not found", "failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.postService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "post not found", "failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePostRequest(r *http.Request) (PostUpsertRequest, error) {
	var req PostUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return PostUpsertRequest{}, errors.New("invalid request")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Photo = strings.TrimSpace(req.Photo)
	return req, nil
}

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
