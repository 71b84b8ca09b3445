package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/brainvault/util/telemetry"
)

// NewRouter routes the public and bearer-protected endpoints. A nil metrics
// disables /metrics.
func NewRouter(vault Vault, metrics *telemetry.Metrics) http.Handler {
	status := NewStatusHandler()
	auth := NewAuthHandler(vault)
	notes := NewNotesHandler(vault)
	chat := NewChatHandler(vault)

	router := mux.NewRouter()

	if metrics != nil {
		router.Use(metrics.Middleware)
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/", status.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", status.Health).Methods(http.MethodGet)

	router.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(Authenticated(vault))
	api.HandleFunc("/notes", notes.Save).Methods(http.MethodPost)
	api.HandleFunc("/notes", notes.List).Methods(http.MethodGet)
	api.HandleFunc("/chat", chat.Chat).Methods(http.MethodPost)

	return router
}
