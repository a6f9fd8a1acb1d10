package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
	"github.com/google/uuid"
)

// MessageStore keeps messages in insertion order. Used by tests and STORAGE_DRIVER=memory.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*models.Message
	byConv   map[string][]int // conversationID -> indexes into messages, insertion order
}

var _ storage.MessageStore = (*MessageStore)(nil)

func NewMessageStore() *MessageStore {
	return &MessageStore{
		byConv: make(map[string][]int),
	}
}

func (s *MessageStore) Insert(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	stored := *msg
	stored.SenderInfo, stored.ReceiverInfo = nil, nil

	s.messages = append(s.messages, &stored)
	s.byConv[stored.ConversationID] = append(s.byConv[stored.ConversationID], len(s.messages)-1)
	return nil
}

func (s *MessageStore) FindByConversation(_ context.Context, conversationID string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}
	idx := s.byConv[conversationID]
	out := make([]models.Message, 0, len(idx))
	for _, i := range idx {
		out = append(out, *s.messages[i])
	}
	// Stable: equal timestamps keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MessageStore) ListConversationsForUser(_ context.Context, userID string) ([]models.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		last   int
		unread int
	}
	groups := make(map[string]*group)
	for i, m := range s.messages {
		if m.Sender != userID && m.Receiver != userID {
			continue
		}
		g, ok := groups[m.ConversationID]
		if !ok {
			g = &group{last: i}
			groups[m.ConversationID] = g
		}
		// Later insertions win ties on createdAt.
		if !m.CreatedAt.Before(s.messages[g.last].CreatedAt) {
			g.last = i
		}
		if m.Receiver == userID && !m.Read {
			g.unread++
		}
	}

	out := make([]models.ConversationSummary, 0, len(groups))
	lastIdx := make(map[string]int, len(groups))
	for convID, g := range groups {
		out = append(out, models.ConversationSummary{
			ConversationID: convID,
			LastMessage:    *s.messages[g.last],
			UnreadCount:    g.unread,
		})
		lastIdx[convID] = g.last
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessage.CreatedAt, out[j].LastMessage.CreatedAt
		if a.Equal(b) {
			return lastIdx[out[i].ConversationID] > lastIdx[out[j].ConversationID]
		}
		return a.After(b)
	})
	return out, nil
}

func (s *MessageStore) MarkRead(_ context.Context, conversationID, readerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, i := range s.byConv[conversationID] {
		m := s.messages[i]
		if m.Receiver == readerID && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *MessageStore) Close(context.Context) error { return nil }
