package http

import "net/http"

type statusHandler struct{}

func (h *statusHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "BrainVault API is running!"})
}

func (h *statusHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func NewStatusHandler() *statusHandler {
	return &statusHandler{}
}
