package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/w-h-a/brainvault/internal/service"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type chatHandler struct {
	vault Vault
}

func (h *chatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeUnauthorized(w, badToken)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", service.ErrValidation))
		return
	}

	answer, err := h.vault.Ask(r.Context(), user, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.DebugContext(r.Context(), "answered question", "user_id", user.Id, "matches", answer.Count)

	writeJSON(w, http.StatusOK, chatResponse{Reply: answer.Answer})
}

func NewChatHandler(vault Vault) *chatHandler {
	return &chatHandler{vault: vault}
}
