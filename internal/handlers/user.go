package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bloghub/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides HTTP handlers for user profiles.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.With(authMiddleware).Put("/", handler.UpdateUser)
		r.With(authMiddleware).Delete("/", handler.DeleteUser)
	})
}

// UserUpdateRequest is the JSON body for profile updates. Empty fields
// are left unchanged; a non-empty password is re-hashed.
type UserUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetUser returns a user's public profile. The password digest is
// stripped by the User type's JSON encoding.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "user not found", "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	requesterID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.userService.Update(r.Context(), requesterID, services.UserUpdate{
		ID:       id,
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err, "user not found", "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), requesterID, id); err != nil {
		writeServiceError(w, err, "user not found", "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
