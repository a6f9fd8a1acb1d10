package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
)

// Conn is one live websocket connection. Pushes are queued on a bounded buffer drained by
// writePump; the read side is driven by the handler.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
	pingInterval time.Duration
	log          *zap.Logger
}

func newConn(wsConn *websocket.Conn, cfg Config, log *zap.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:           id,
		ws:           wsConn,
		send:         make(chan []byte, cfg.SendBuffer),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
		log:          log.With(zap.String("conn_id", id)),
	}
}

func (c *Conn) ID() string { return c.id }

// Push enqueues an event without blocking. A full buffer or a closed connection yields
// apperr.ErrDelivery.
func (c *Conn) Push(event EventType, data any) error {
	select {
	case <-c.done:
		return apperr.Delivery("connection closed")
	default:
	}
	payload, err := encode(event, data)
	if err != nil {
		return err
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return apperr.Delivery("send buffer full")
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
