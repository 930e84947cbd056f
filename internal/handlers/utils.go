package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bloghub/apiserver/internal/services"
	"github.com/bloghub/apiserver/internal/store"
)

type contextKey string

const contextUserIDKey contextKey = "user_id"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userIDFromContext(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(contextUserIDKey).(int)
	if !ok || userID < 1 {
		return 0, errors.New("missing user id")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps service-layer failures to HTTP statuses.
// Anything unrecognized becomes a generic 500 so internal detail never
// reaches the client.
func writeServiceError(w http.ResponseWriter, err error, notFoundMessage, internalMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	default:
		writeError(w, http.StatusInternalServerError, internalMessage)
	}
}
