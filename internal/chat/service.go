// Package chat holds the message operations shared by the websocket handler and the REST facade.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
)

type Service struct {
	store        storage.MessageStore
	dir          storage.Directory
	now          storage.Clock
	historyLimit int
	log          *zap.Logger
}

type Option func(*Service)

func WithClock(c storage.Clock) Option {
	return func(s *Service) { s.now = c }
}

func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

func NewService(store storage.MessageStore, dir storage.Directory, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		dir:          dir,
		now:          time.Now,
		historyLimit: storage.DefaultHistoryLimit,
		log:          log.Named("chat"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates and persists a new unread message. The returned message carries the
// participants' profiles.
func (s *Service) Create(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("message content is required")
	}
	if senderID == "" || receiverID == "" {
		return nil, apperr.Validation("sender and receiver are required")
	}
	sender, err := s.resolve(ctx, "sender", senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.resolve(ctx, "receiver", receiverID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Sender:         senderID,
		Receiver:       receiverID,
		Content:        content,
		ConversationID: models.ConversationID(senderID, receiverID),
		CreatedAt:      s.now(),
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		s.log.Error("persisting message failed",
			zap.String("conversation_id", msg.ConversationID), zap.Error(err))
		return nil, apperr.Persistence("insert message", err)
	}
	msg.SenderInfo, msg.ReceiverInfo = sender, receiver

	s.log.Debug("message stored",
		zap.String("message_id", msg.ID), zap.String("conversation_id", msg.ConversationID))
	return msg, nil
}

func (s *Service) resolve(ctx context.Context, role, userID string) (*models.UserRef, error) {
	ref, err := s.dir.Resolve(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validation("unknown %s %q", role, userID)
	}
	if err != nil {
		return nil, apperr.Persistence("resolve "+role, err)
	}
	return ref, nil
}

// History returns the conversation between the two users, oldest first.
func (s *Service) History(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	if userID == "" || otherUserID == "" {
		return nil, apperr.Validation("both participants are required")
	}
	conversationID := models.ConversationID(userID, otherUserID)
	msgs, err := s.store.FindByConversation(ctx, conversationID, s.historyLimit)
	if err != nil {
		return nil, apperr.Persistence("find conversation", err)
	}

	profiles := s.profiles(ctx)
	for i := range msgs {
		msgs[i].SenderInfo = profiles(msgs[i].Sender)
		msgs[i].ReceiverInfo = profiles(msgs[i].Receiver)
	}
	return msgs, nil
}

// Conversations lists the user's conversations, most recent first.
func (s *Service) Conversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if userID == "" {
		return nil, apperr.Validation("user is required")
	}
	sums, err := s.store.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("list conversations", err)
	}

	profiles := s.profiles(ctx)
	for i := range sums {
		last := &sums[i].LastMessage
		last.SenderInfo = profiles(last.Sender)
		last.ReceiverInfo = profiles(last.Receiver)
	}
	return sums, nil
}

// MarkRead marks every message in the conversation addressed to readerID as read.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	if conversationID == "" || readerID == "" {
		return 0, apperr.Validation("conversation and reader are required")
	}
	n, err := s.store.MarkRead(ctx, conversationID, readerID)
	if err != nil {
		return 0, apperr.Persistence("mark read", err)
	}
	s.log.Debug("conversation marked read",
		zap.String("conversation_id", conversationID), zap.String("user_id", readerID), zap.Int64("updated", n))
	return n, nil
}

// profiles memoizes directory lookups for one request. Unresolvable ids fall back to a bare ref.
func (s *Service) profiles(ctx context.Context) func(string) *models.UserRef {
	seen := map[string]*models.UserRef{}
	return func(id string) *models.UserRef {
		if ref, ok := seen[id]; ok {
			return ref
		}
		ref, err := s.dir.Resolve(ctx, id)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				s.log.Warn("profile lookup failed", zap.String("user_id", id), zap.Error(err))
			}
			ref = &models.UserRef{ID: id}
		}
		seen[id] = ref
		return ref
	}
}
