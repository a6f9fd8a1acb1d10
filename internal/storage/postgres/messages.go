package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
)

// seq orders messages that share a created_at timestamp.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	seq             BIGSERIAL PRIMARY KEY,
	id              TEXT        NOT NULL UNIQUE,
	sender          TEXT        NOT NULL,
	receiver        TEXT        NOT NULL,
	content         TEXT        NOT NULL CHECK (content <> ''),
	conversation_id TEXT        NOT NULL,
	read            BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_conversation_idx ON messages (conversation_id, created_at, seq);
CREATE INDEX IF NOT EXISTS messages_sender_idx ON messages (sender);
CREATE INDEX IF NOT EXISTS messages_receiver_read_idx ON messages (receiver, read);
`

const (
	insertMessageQuery = `
		INSERT INTO messages (id, sender, receiver, content, conversation_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	historyQuery = `
		SELECT id, sender, receiver, content, conversation_id, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC
		LIMIT $2`

	conversationsQuery = `
		SELECT id, sender, receiver, content, conversation_id, read, created_at, unread_count
		FROM (
			SELECT m.*,
				COUNT(*) FILTER (WHERE m.receiver = $1 AND NOT m.read)
					OVER (PARTITION BY m.conversation_id) AS unread_count,
				ROW_NUMBER() OVER (PARTITION BY m.conversation_id ORDER BY m.created_at DESC, m.seq DESC) AS rn
			FROM messages m
			WHERE m.sender = $1 OR m.receiver = $1
		) latest
		WHERE rn = 1
		ORDER BY created_at DESC, seq DESC`

	markReadQuery = `
		UPDATE messages SET read = TRUE
		WHERE conversation_id = $1 AND receiver = $2 AND read = FALSE`
)

// MessageStore implements storage.MessageStore using PostgreSQL.
type MessageStore struct {
	db      *sql.DB
	timeout time.Duration
	log     *zap.Logger
}

var _ storage.MessageStore = (*MessageStore)(nil)

// NewMessageStore opens the pool, verifies the connection and applies the schema.
func NewMessageStore(ctx context.Context, dataSourceName string, timeout time.Duration, log *zap.Logger) (*MessageStore, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection for messages: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database for messages: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying messages schema: %w", err)
	}

	log = log.Named("postgres")
	log.Info("connected to PostgreSQL message store")
	return &MessageStore{db: db, timeout: timeout, log: log}, nil
}

func (s *MessageStore) Insert(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// TIMESTAMPTZ keeps microseconds.
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, insertMessageQuery,
		id, msg.Sender, msg.Receiver, msg.Content, msg.ConversationID, msg.Read, msg.CreatedAt)
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

func (s *MessageStore) FindByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, historyQuery, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(messageColumns(&m)...); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MessageStore) ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, conversationsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ConversationSummary{}
	for rows.Next() {
		var sum models.ConversationSummary
		dest := append(messageColumns(&sum.LastMessage), &sum.UnreadCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		sum.LastMessage.CreatedAt = sum.LastMessage.CreatedAt.UTC()
		sum.ConversationID = sum.LastMessage.ConversationID
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *MessageStore) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, markReadQuery, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *MessageStore) Close(context.Context) error {
	return s.db.Close()
}

// messageColumns lists scan targets in the column order shared by the select queries.
func messageColumns(m *models.Message) []any {
	return []any{&m.ID, &m.Sender, &m.Receiver, &m.Content, &m.ConversationID, &m.Read, &m.CreatedAt}
}
