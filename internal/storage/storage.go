package storage

import (
	"context"
	"time"

	"github.com/Vasu1712/gymchat-backend/internal/models"
)

// DefaultHistoryLimit caps conversation history when the caller passes no limit.
const DefaultHistoryLimit = 100

// MessageStore is the persistence boundary for direct messages.
// Implementations must not cache: every call reflects the current durable state.
type MessageStore interface {
	// Insert assigns msg.ID and persists msg as given.
	Insert(ctx context.Context, msg *models.Message) error
	// FindByConversation returns up to limit messages, oldest first, ties in insertion order.
	FindByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	// ListConversationsForUser returns one summary per conversation the user takes part in,
	// most recent message first.
	ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	// MarkRead flips read=true on the reader's unread messages and reports how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	Close(ctx context.Context) error
}

// Directory resolves user ids to public profiles.
// Resolve returns apperr.ErrNotFound for ids that do not exist.
type Directory interface {
	Resolve(ctx context.Context, userID string) (*models.UserRef, error)
}

// Clock is swapped in tests to produce deterministic timestamps.
type Clock func() time.Time
