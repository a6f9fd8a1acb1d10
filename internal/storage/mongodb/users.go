package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/models"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
)

const usersCollection = "users"

type userDoc struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

// UserDirectory reads participant profiles from the "users" collection owned by the
// account service. It never writes.
type UserDirectory struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ storage.Directory = (*UserDirectory)(nil)

func NewUserDirectory(db *mongo.Database, timeout time.Duration) *UserDirectory {
	return &UserDirectory{coll: db.Collection(usersCollection), timeout: timeout}
}

func (d *UserDirectory) Resolve(ctx context.Context, userID string) (*models.UserRef, error) {
	if userID == "" {
		return nil, apperr.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var doc userDoc
	opts := options.FindOne().SetProjection(bson.M{"name": 1, "email": 1})
	err := d.coll.FindOne(ctx, userFilter(userID), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.UserRef{ID: userID, Name: doc.Name, Email: doc.Email}, nil
}

// userFilter matches ObjectID keys written by the account service and plain string keys alike.
func userFilter(userID string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": userID}
}
