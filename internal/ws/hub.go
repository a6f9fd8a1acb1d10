package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub maps user ids to their current connection. Only the latest join for a user is
// reachable; a connection can only remove its own entry.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
		log:   log.Named("hub"),
	}
}

// Join registers c for userID, displacing any previous connection without closing it.
func (h *Hub) Join(userID string, c *Conn) {
	h.mu.Lock()
	prev, had := h.conns[userID]
	h.conns[userID] = c
	h.mu.Unlock()

	if had && prev != c {
		h.log.Debug("presence displaced", zap.String("user_id", userID),
			zap.String("conn_id", c.ID()), zap.String("prev_conn_id", prev.ID()))
	}
}

func (h *Hub) Lookup(userID string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[userID]
	return c, ok
}

// Remove deletes userID's entry only if it still points at c.
func (h *Hub) Remove(userID string, c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[userID]; ok && cur == c {
		delete(h.conns, userID)
		return true
	}
	return false
}

// Online reports how many users currently have a registered connection.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
