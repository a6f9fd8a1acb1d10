package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func newMessage(sender, receiver, content string, at time.Time) *models.Message {
	return &models.Message{
		Sender:         sender,
		Receiver:       receiver,
		Content:        content,
		ConversationID: models.ConversationID(sender, receiver),
		CreatedAt:      at,
	}
}

func Test_Insert_Assigns_ID(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	msg := newMessage("u1", "u2", "hi", time.Now())
	req.NoError(store.Insert(context.Background(), msg))
	req.NotEmpty(msg.ID)

	history, err := store.FindByConversation(context.Background(), msg.ConversationID, 0)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(msg.ID, history[0].ID)
	req.False(history[0].Read)
}

func Test_FindByConversation_Ascending_And_Limited(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	ctx := context.Background()
	at := time.Now().UTC()

	// Inserted out of time order on purpose.
	req.NoError(store.Insert(ctx, newMessage("u2", "u1", "second", at.Add(time.Minute))))
	req.NoError(store.Insert(ctx, newMessage("u1", "u2", "first", at)))
	req.NoError(store.Insert(ctx, newMessage("u1", "u2", "third", at.Add(2*time.Minute))))
	req.NoError(store.Insert(ctx, newMessage("u1", "u3", "other conversation", at)))

	history, err := store.FindByConversation(ctx, models.ConversationID("u1", "u2"), 0)
	req.NoError(err)
	req.Len(history, 3)
	req.Equal("first", history[0].Content)
	req.Equal("second", history[1].Content)
	req.Equal("third", history[2].Content)

	limited, err := store.FindByConversation(ctx, models.ConversationID("u1", "u2"), 2)
	req.NoError(err)
	req.Len(limited, 2)
	req.Equal("first", limited[0].Content)
}

func Test_FindByConversation_Ties_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	ctx := context.Background()
	at := time.Now()

	for _, c := range []string{"a", "b", "c"} {
		req.NoError(store.Insert(ctx, newMessage("u1", "u2", c, at)))
	}
	history, err := store.FindByConversation(ctx, models.ConversationID("u1", "u2"), 0)
	req.NoError(err)
	req.Equal([]string{"a", "b", "c"}, []string{history[0].Content, history[1].Content, history[2].Content})
}

func Test_ListConversationsForUser(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	ctx := context.Background()
	at := time.Now()

	req.NoError(store.Insert(ctx, newMessage("u2", "u1", "from u2 #1", at)))
	req.NoError(store.Insert(ctx, newMessage("u2", "u1", "from u2 #2", at.Add(time.Second))))
	req.NoError(store.Insert(ctx, newMessage("u1", "u3", "to u3", at.Add(2*time.Second))))
	req.NoError(store.Insert(ctx, newMessage("u4", "u5", "unrelated", at.Add(3*time.Second))))

	summaries, err := store.ListConversationsForUser(ctx, "u1")
	req.NoError(err)
	req.Len(summaries, 2)

	req.Equal(models.ConversationID("u1", "u3"), summaries[0].ConversationID)
	req.Equal("to u3", summaries[0].LastMessage.Content)
	req.Equal(0, summaries[0].UnreadCount)

	req.Equal(models.ConversationID("u1", "u2"), summaries[1].ConversationID)
	req.Equal("from u2 #2", summaries[1].LastMessage.Content)
	req.Equal(2, summaries[1].UnreadCount)
}

func Test_MarkRead_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	ctx := context.Background()
	convID := models.ConversationID("u1", "u2")

	req.NoError(store.Insert(ctx, newMessage("u1", "u2", "one", time.Now())))
	req.NoError(store.Insert(ctx, newMessage("u1", "u2", "two", time.Now())))
	req.NoError(store.Insert(ctx, newMessage("u2", "u1", "reply", time.Now())))

	updated, err := store.MarkRead(ctx, convID, "u2")
	req.NoError(err)
	req.EqualValues(2, updated)

	updated, err = store.MarkRead(ctx, convID, "u2")
	req.NoError(err)
	req.EqualValues(0, updated)

	// u1's incoming reply is untouched.
	summaries, err := store.ListConversationsForUser(ctx, "u1")
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal(1, summaries[0].UnreadCount)
}

func Test_Directory_Resolve(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	closed := NewDirectory(models.UserRef{ID: "u1", Name: "Ada", Email: "ada@gym.test"})
	u, err := closed.Resolve(ctx, "u1")
	req.NoError(err)
	req.Equal("Ada", u.Name)
	_, err = closed.Resolve(ctx, "ghost")
	req.Error(err)

	open := NewOpenDirectory()
	u, err = open.Resolve(ctx, "anyone")
	req.NoError(err)
	req.Equal("anyone", u.ID)
	_, err = open.Resolve(ctx, "")
	req.Error(err)
}
