package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bloghub/apiserver/internal/auth"
	"github.com/bloghub/apiserver/internal/services"
	"github.com/bloghub/apiserver/internal/store"
	"github.com/bloghub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const tokenCookieName = "token"

// AuthHandler provides registration, login, and token endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, tokens *auth.TokenService) {
	handler := NewAuthHandler(userService, tokens)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
	r.Get("/refetch", handler.Refetch)
}

// RequireAuth constructs middleware that authenticates a request from
// the token cookie or, failing that, a bearer Authorization header.
// The identity is trusted from the token payload alone; no database
// lookup happens here, so claims reflect the user at issuance time.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := requestToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusForbidden, tokenErrorMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), contextUserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken locates a token, preferring the cookie over the header.
func requestToken(r *http.Request) string {
	if cookie, err := r.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func tokenErrorMessage(err error) string {
	if errors.Is(err, auth.ErrTokenExpired) {
		return "token expired"
	}
	return "token invalid"
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	if _, err := h.userService.GetByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusConflict, "username already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Login verifies credentials, sets the token cookie, and returns the
// token alongside the user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL / time.Second),
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout clears the token cookie. The token itself stays valid until
// expiry; there is no revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Refetch verifies the token cookie and returns the current user
// loaded fresh from the database.
func (h *AuthHandler) Refetch(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	claims, err := h.tokens.Verify(cookie.Value)
	if err != nil {
		writeError(w, http.StatusForbidden, tokenErrorMessage(err))
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
