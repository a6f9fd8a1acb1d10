package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
)

const messagesCollection = "messages"

type messageDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Sender         string             `bson:"sender"`
	Receiver       string             `bson:"receiver"`
	Content        string             `bson:"content"`
	ConversationID string             `bson:"conversationId"`
	Read           bool               `bson:"read"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

type summaryDoc struct {
	ConversationID string     `bson:"_id"`
	LastMessage    messageDoc `bson:"lastMessage"`
	UnreadCount    int        `bson:"unreadCount"`
}

// MessageStore persists messages in the "messages" collection.
type MessageStore struct {
	coll    *mongo.Collection
	timeout time.Duration
	log     *zap.Logger
}

var _ storage.MessageStore = (*MessageStore)(nil)

// NewMessageStore wires the collection and makes sure the lookup indexes exist.
func NewMessageStore(ctx context.Context, db *mongo.Database, timeout time.Duration, log *zap.Logger) (*MessageStore, error) {
	s := &MessageStore{
		coll:    db.Collection(messagesCollection),
		timeout: timeout,
		log:     log.Named("mongo"),
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	names, err := s.coll.Indexes().CreateMany(ctx, messageIndexes())
	if err != nil {
		return nil, fmt.Errorf("creating message indexes: %w", err)
	}
	s.log.Info("message indexes ready", zap.Strings("indexes", names))
	return s, nil
}

func messageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "read", Value: 1}}},
	}
}

func (s *MessageStore) Insert(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// BSON dates carry millisecond precision; keep the returned message equal to the stored one.
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Millisecond)
	doc := toDoc(msg)
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	msg.ID = doc.ID.Hex()
	return nil
}

func (s *MessageStore) FindByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}
	// ObjectIDs grow with insertion, so _id breaks createdAt ties.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	for cur.Next(ctx) {
		var d messageDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(d))
	}
	return out, cur.Err()
}

func (s *MessageStore) ListConversationsForUser(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Aggregate(ctx, conversationsPipeline(userID))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ConversationSummary{}
	for cur.Next(ctx) {
		var d summaryDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, models.ConversationSummary{
			ConversationID: d.ConversationID,
			LastMessage:    fromDoc(d.LastMessage),
			UnreadCount:    d.UnreadCount,
		})
	}
	return out, cur.Err()
}

// conversationsPipeline groups the user's messages by conversation, keeping the newest message
// and counting the ones still unread by the user.
func conversationsPipeline(userID string) mongo.Pipeline {
	newestFirst := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender": userID},
			bson.M{"receiver": userID},
		}}}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversationId"},
			{Key: "lastMessage", Value: bson.M{"$first": "$$ROOT"}},
			{Key: "unreadCount", Value: bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver", userID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.createdAt", Value: -1}, {Key: "lastMessage._id", Value: -1}}}},
	}
}

func (s *MessageStore) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.UpdateMany(ctx,
		markReadFilter(conversationID, readerID),
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func markReadFilter(conversationID, readerID string) bson.M {
	return bson.M{"conversationId": conversationID, "receiver": readerID, "read": false}
}

// Close disconnects the underlying client.
func (s *MessageStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

func toDoc(m *models.Message) messageDoc {
	return messageDoc{
		Sender:         m.Sender,
		Receiver:       m.Receiver,
		Content:        m.Content,
		ConversationID: m.ConversationID,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}

func fromDoc(d messageDoc) models.Message {
	return models.Message{
		ID:             d.ID.Hex(),
		Sender:         d.Sender,
		Receiver:       d.Receiver,
		Content:        d.Content,
		ConversationID: d.ConversationID,
		Read:           d.Read,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}
