package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crucial707/blog-platform/internal/auth"
	"github.com/crucial707/blog-platform/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Gateway  *auth.Gateway
}

// ==========================
// Login (uniform failure: no signal whether the username exists)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil {
		JSONError(w, "Invalid credentials.", http.StatusUnauthorized)
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, input.Password); err != nil {
		JSONError(w, "Invalid credentials.", http.StatusUnauthorized)
		return
	}

	signed, err := h.Gateway.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("login: issue token", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": signed})
}
