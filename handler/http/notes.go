package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/w-h-a/brainvault/internal/service"
)

type saveNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type saveNoteResponse struct {
	Message string `json:"message"`
	NoteId  string `json:"note_id"`
	User    string `json:"user"`
}

type listNotesResponse struct {
	Message string `json:"message"`
	UserId  int64  `json:"user_id"`
	Note    string `json:"note"`
}

type notesHandler struct {
	vault Vault
}

func (h *notesHandler) Save(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeUnauthorized(w, badToken)
		return
	}

	var req saveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: Both 'title' and 'content' fields are required", service.ErrValidation))
		return
	}

	noteId, err := h.vault.SaveNote(r.Context(), user, req.Title, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saveNoteResponse{
		Message: "Note saved successfully!",
		NoteId:  noteId,
		User:    user.Email,
	})
}

// List does not enumerate notes; searching goes through chat.
func (h *notesHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeUnauthorized(w, badToken)
		return
	}

	writeJSON(w, http.StatusOK, listNotesResponse{
		Message: "Notes for user " + user.Email,
		UserId:  user.Id,
		Note:    "Use /api/chat to search your notes",
	})
}

func NewNotesHandler(vault Vault) *notesHandler {
	return &notesHandler{vault: vault}
}
