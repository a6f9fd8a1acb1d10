package messages

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/auth"
	"github.com/Vasu1712/gymchat-backend/internal/models"
)

// Service is the subset of chat.Service the REST facade needs.
type Service interface {
	Create(ctx context.Context, senderID, receiverID, content string) (*models.Message, error)
	History(ctx context.Context, userID, otherUserID string) ([]models.Message, error)
	Conversations(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

type Handler struct {
	svc Service
	log *zap.Logger
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("messages")}
}

// ListConversations returns the caller's conversations, most recent first.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	sums, err := h.svc.Conversations(r.Context(), userID)
	if err != nil {
		h.fail(w, "Error fetching conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, sums)
}

// GetConversation returns the history between the caller and {userId}.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	other := mux.Vars(r)["userId"]
	msgs, err := h.svc.History(r.Context(), userID, other)
	if err != nil {
		h.fail(w, "Error fetching messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	conversationID := mux.Vars(r)["conversationId"]
	n, err := h.svc.MarkRead(r.Context(), conversationID, userID)
	if err != nil {
		h.fail(w, "Error marking messages as read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Messages marked as read",
		"updated": n,
	})
}

// SendMessage persists a message from the caller. It does not push to connected sockets.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, "Error sending message", apperr.Validation("invalid JSON body"))
		return
	}
	msg, err := h.svc.Create(r.Context(), currentUser(r), body.ReceiverID, body.Content)
	if err != nil {
		h.fail(w, "Error sending message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func currentUser(r *http.Request) string {
	id, _ := auth.UserFromContext(r.Context())
	return id
}

func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(message, zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"message": message, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
