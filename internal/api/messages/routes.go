package messages

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the conversation API under /api/messages behind requireUser.
func RegisterRoutes(r *mux.Router, h *Handler, requireUser mux.MiddlewareFunc) {
	api := r.PathPrefix("/api/messages").Subrouter()
	api.Use(requireUser)

	api.HandleFunc("/conversations", h.ListConversations).Methods(http.MethodGet)
	api.HandleFunc("/conversation/{userId}", h.GetConversation).Methods(http.MethodGet)
	api.HandleFunc("/conversation/{conversationId}/read", h.MarkRead).Methods(http.MethodPatch)
	api.HandleFunc("", h.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/", h.SendMessage).Methods(http.MethodPost)
}
