package ws

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/models"
)

// MessageCreator persists a message on behalf of the socket layer.
type MessageCreator interface {
	Create(ctx context.Context, senderID, receiverID, content string) (*models.Message, error)
}

type sessionState int

const (
	stateUnidentified sessionState = iota
	stateIdentified
	stateClosed
)

// Session runs the event state machine of one connection. All methods are called from the
// connection's read goroutine, so events of a connection are handled in arrival order.
type Session struct {
	conn     *Conn
	hub      *Hub
	messages MessageCreator
	limiter  *rate.Limiter
	log      *zap.Logger

	// authUser is the identity proven at upgrade time; empty for anonymous sockets.
	authUser string

	state  sessionState
	userID string
}

func newSession(conn *Conn, hub *Hub, messages MessageCreator, authUser string, eventsPerSecond float64) *Session {
	s := &Session{
		conn:     conn,
		hub:      hub,
		messages: messages,
		authUser: authUser,
		log:      conn.log,
	}
	if eventsPerSecond > 0 {
		burst := int(eventsPerSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(eventsPerSecond), burst)
	}
	return s
}

// UserID is the identity recorded by the last join, empty before one.
func (s *Session) UserID() string { return s.userID }

// Handle decodes and dispatches one inbound frame. Frames after Close are ignored.
func (s *Session) Handle(ctx context.Context, frame []byte) {
	if s.state == stateClosed {
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.pushError("rate limit exceeded")
		return
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		s.pushError("malformed event")
		return
	}

	switch env.Event {
	case EventJoin:
		s.join(env.Data)
	case EventSendMessage:
		s.sendMessage(ctx, env.Data)
	case EventTyping:
		s.typing(env.Data)
	default:
		s.log.Debug("ignoring unknown event", zap.String("event", string(env.Event)))
	}
}

func (s *Session) join(data json.RawMessage) {
	userID, err := parseJoin(data)
	if err != nil {
		s.pushError(err.Error())
		return
	}
	if s.authUser != "" && userID != s.authUser {
		s.pushError("cannot join as another user")
		return
	}
	// A second join under another id leaves the earlier registration in place.
	s.hub.Join(userID, s.conn)
	s.userID = userID
	s.state = stateIdentified
	s.log.Info("user joined", zap.String("user_id", userID))
}

func (s *Session) sendMessage(ctx context.Context, data json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.pushError("malformed sendMessage payload")
		return
	}
	if s.authUser != "" {
		if p.SenderID == "" {
			p.SenderID = s.authUser
		}
		if p.SenderID != s.authUser {
			s.pushError("cannot send as another user")
			return
		}
	}

	msg, err := s.messages.Create(ctx, p.SenderID, p.ReceiverID, p.Content)
	if err != nil {
		s.log.Warn("sendMessage rejected",
			zap.String("user_id", p.SenderID), zap.String("receiver_id", p.ReceiverID), zap.Error(err))
		s.pushError(clientMessage(err))
		return
	}

	if rc, ok := s.hub.Lookup(p.ReceiverID); ok {
		s.deliver(rc, EventReceiveMessage, msg)
	}
	s.deliver(s.conn, EventMessageSent, msg)
}

func (s *Session) typing(data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	if rc, ok := s.hub.Lookup(p.ReceiverID); ok {
		s.deliver(rc, EventUserTyping, UserTypingPayload{UserID: s.userID, IsTyping: p.IsTyping})
	}
}

// Close unregisters the session's identity if it still owns the registry entry.
func (s *Session) Close() {
	if s.state == stateClosed {
		return
	}
	if s.state == stateIdentified {
		removed := s.hub.Remove(s.userID, s.conn)
		s.log.Info("user disconnected", zap.String("user_id", s.userID), zap.Bool("presence_removed", removed))
	}
	s.state = stateClosed
	s.conn.close()
}

func (s *Session) deliver(to *Conn, event EventType, data any) {
	if err := to.Push(event, data); err != nil {
		s.log.Warn("push dropped",
			zap.String("event", string(event)), zap.String("target_conn_id", to.ID()), zap.Error(err))
	}
}

func (s *Session) pushError(message string) {
	s.deliver(s.conn, EventError, ErrorPayload{Message: message})
}

// clientMessage keeps store internals out of validation errors while still reporting
// persistence failures.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return err.Error()
	case errors.Is(err, apperr.ErrPersistence):
		return "failed to send message: " + err.Error()
	default:
		return "failed to send message"
	}
}
