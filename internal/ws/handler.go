package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/auth"
)

const maxFrameBytes = 64 * 1024

type Config struct {
	SendBuffer      int
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	EventsPerSecond float64
	// RequireAuth rejects upgrades that carry no valid token.
	RequireAuth bool
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	return c
}

// Handler upgrades HTTP requests and runs one Session per connection.
type Handler struct {
	hub      *Hub
	messages MessageCreator
	tokens   *auth.Resolver
	cfg      Config
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the websocket endpoint. allowOrigin may be nil to accept any origin.
func NewHandler(hub *Hub, messages MessageCreator, tokens *auth.Resolver, allowOrigin func(string) bool, cfg Config, log *zap.Logger) *Handler {
	h := &Handler{
		hub:      hub,
		messages: messages,
		tokens:   tokens,
		cfg:      cfg.withDefaults(),
		log:      log.Named("ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authUser, err := h.identify(r)
	if err != nil {
		h.log.Debug("upgrade rejected", zap.Error(err))
		http.Error(w, err.Error(), apperr.HTTPStatus(err))
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	conn := newConn(wsConn, h.cfg, h.log)
	sess := newSession(conn, h.hub, h.messages, authUser, h.cfg.EventsPerSecond)
	conn.log.Debug("connected", zap.String("remote_addr", r.RemoteAddr), zap.String("auth_user", authUser))

	go conn.writePump()
	h.readLoop(r, sess)
}

// identify resolves the optional upgrade token. A token that is present but invalid is
// always rejected.
func (h *Handler) identify(r *http.Request) (string, error) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		if h.cfg.RequireAuth {
			return "", fmt.Errorf("%w: token required", apperr.ErrAuthentication)
		}
		return "", nil
	}
	if h.tokens == nil {
		return "", nil
	}
	return h.tokens.Resolve(token)
}

func (h *Handler) readLoop(r *http.Request, sess *Session) {
	conn := sess.conn
	defer sess.Close()

	pongWait := h.cfg.PingInterval * 10 / 9
	conn.ws.SetReadLimit(maxFrameBytes)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				conn.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		sess.Handle(r.Context(), frame)
	}
}
