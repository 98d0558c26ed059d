package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// SessionEventRepository implements ports.SessionEventRepository using MongoDB.
type SessionEventRepository struct {
	db *mongo.Database
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) ports.SessionEventRepository {
	return &SessionEventRepository{db: db}
}

// InsertEvent appends a session transition to the session_events collection.
func (r *SessionEventRepository) InsertEvent(ctx context.Context, event *domain.SessionEvent) error {
	doc := bson.M{
		"kind":        string(event.Kind),
		"client_id":   event.ClientID,
		"user_id":     event.UserID,
		"role":        string(event.Role),
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(collectionSessionEvents).InsertOne(ctx, doc)
	return err
}
