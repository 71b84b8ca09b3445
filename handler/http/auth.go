package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/w-h-a/brainvault/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authHandler struct {
	vault Vault
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", service.ErrValidation))
		return
	}

	user, err := h.vault.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login takes the OAuth2 password form; username carries the email.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid form body", service.ErrValidation))
		return
	}

	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if len(email) == 0 || len(password) == 0 {
		writeError(w, r, fmt.Errorf("%w: username and password are required", service.ErrValidation))
		return
	}

	token, err := h.vault.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func NewAuthHandler(vault Vault) *authHandler {
	return &authHandler{vault: vault}
}
