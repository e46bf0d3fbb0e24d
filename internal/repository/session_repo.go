package repository

import (
	"brainarcade/internal/model"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepo archives ended sessions with their adjustment history
type SessionRepo interface {
	Archive(ctx context.Context, state *model.SessionState) error
	GetByID(ctx context.Context, sessionID string) (*model.SessionState, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]*model.SessionState, error)
	EnsureIndexes(ctx context.Context) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

// Archive is idempotent: ending the same session twice overwrites the record
func (r *sessionRepo) Archive(ctx context.Context, state *model.SessionState) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": state.SessionID},
		state,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, sessionID string) (*model.SessionState, error) {
	var state model.SessionState
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ListByUser returns the newest sessions first
func (r *sessionRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]*model.SessionState, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.SessionState
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
	})
	return err
}
