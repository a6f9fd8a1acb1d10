package ws

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newTestConn(buffer int) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
		log:  zap.NewNop(),
	}
}

func TestHub_JoinLookupRemove(t *testing.T) {
	req := require.New(t)
	hub := NewHub(zaptest.NewLogger(t))
	c := newTestConn(1)

	_, ok := hub.Lookup("alice")
	req.False(ok)

	hub.Join("alice", c)
	got, ok := hub.Lookup("alice")
	req.True(ok)
	req.Same(c, got)

	req.True(hub.Remove("alice", c))
	_, ok = hub.Lookup("alice")
	req.False(ok)
	req.False(hub.Remove("alice", c))
}

func TestHub_StaleRemoveKeepsNewerConnection(t *testing.T) {
	req := require.New(t)
	hub := NewHub(zaptest.NewLogger(t))
	old, fresh := newTestConn(1), newTestConn(1)

	hub.Join("alice", old)
	hub.Join("alice", fresh)
	req.False(hub.Remove("alice", old))

	got, ok := hub.Lookup("alice")
	req.True(ok)
	req.Same(fresh, got)
	req.False(old.closed(), "displaced connection stays open")
}

func TestHub_ConcurrentJoinAndStaleRemove(t *testing.T) {
	hub := NewHub(zap.NewNop())
	final := newTestConn(1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		stale := newTestConn(1)
		hub.Join("alice", stale)
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Remove("alice", stale)
		}()
		go func() {
			defer wg.Done()
			_, _ = hub.Lookup("alice")
		}()
	}
	wg.Wait()

	hub.Join("alice", final)
	for i := 0; i < 10; i++ {
		hub.Remove("alice", newTestConn(1))
	}
	got, ok := hub.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, final, got)
	assert.Equal(t, 1, hub.Online())
}

func TestConn_PushFailsFast(t *testing.T) {
	c := newTestConn(1)

	require.NoError(t, c.Push(EventError, ErrorPayload{Message: "first"}))
	err := c.Push(EventError, ErrorPayload{Message: "second"})
	assert.ErrorContains(t, err, "send buffer full")

	c.close()
	c.close()
	err = c.Push(EventError, ErrorPayload{Message: "third"})
	assert.ErrorContains(t, err, "connection closed")
}
