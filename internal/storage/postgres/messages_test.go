package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vasu1712/gymchat-backend/internal/models"
)

func TestMessageColumnsOrder(t *testing.T) {
	var m models.Message
	cols := messageColumns(&m)
	require.Len(t, cols, 7)

	*(cols[0].(*string)) = "id-1"
	*(cols[4].(*string)) = "a_b"
	*(cols[5].(*bool)) = true
	assert.Equal(t, "id-1", m.ID)
	assert.Equal(t, "a_b", m.ConversationID)
	assert.True(t, m.Read)
}

func TestQueriesOrderBySequenceOnTies(t *testing.T) {
	assert.Contains(t, historyQuery, "ORDER BY created_at ASC, seq ASC")
	assert.Contains(t, conversationsQuery, "ORDER BY created_at DESC, seq DESC")
	assert.Contains(t, markReadQuery, "read = FALSE")
}

// Runs against a real database when POSTGRES_TEST_DSN is set.
func TestMessageStore_Postgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	req := require.New(t)
	ctx := context.Background()

	store, err := NewMessageStore(ctx, dsn, 5*time.Second, zaptest.NewLogger(t))
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	a, b := "pg-"+time.Now().Format("150405.000000")+"-a", "pg-"+time.Now().Format("150405.000000")+"-b"
	conv := models.ConversationID(a, b)
	base := time.Now()
	for i, content := range []string{"one", "two", "three"} {
		req.NoError(store.Insert(ctx, &models.Message{
			Sender: a, Receiver: b, Content: content, ConversationID: conv,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	history, err := store.FindByConversation(ctx, conv, 2)
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("one", history[0].Content)
	req.Equal("two", history[1].Content)

	summaries, err := store.ListConversationsForUser(ctx, b)
	req.NoError(err)
	req.NotEmpty(summaries)
	req.Equal(conv, summaries[0].ConversationID)
	req.Equal("three", summaries[0].LastMessage.Content)
	req.Equal(3, summaries[0].UnreadCount)

	n, err := store.MarkRead(ctx, conv, b)
	req.NoError(err)
	req.EqualValues(3, n)
	n, err = store.MarkRead(ctx, conv, b)
	req.NoError(err)
	req.Zero(n)
}
