package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

// SessionStorage persists one document per client. Every write touches a
// single document, which MongoDB applies atomically.
type SessionStorage struct {
	coll *mongo.Collection
}

func NewSessionStorage(db *mongo.Database) *SessionStorage {
	return &SessionStorage{coll: db.Collection(collectionSessions)}
}

// Scope satisfies ports.SessionStorageProvider.
func (s *SessionStorage) Scope(clientID string) ports.SessionStorage {
	return &scoped{coll: s.coll, clientID: clientID}
}

type sessionDoc struct {
	ClientID  string    `bson:"client_id"`
	Token     string    `bson:"token,omitempty"`
	UserID    int64     `bson:"user_id"`
	Role      string    `bson:"role"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type scoped struct {
	coll     *mongo.Collection
	clientID string
}

func (s *scoped) Load(ctx context.Context) (domain.PersistedSession, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"client_id": s.clientID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.PersistedSession{}, nil
	}
	if err != nil {
		return domain.PersistedSession{}, fmt.Errorf("session load: %w", err)
	}

	return domain.PersistedSession{
		Token:  doc.Token,
		UserID: doc.UserID,
		Role:   domain.Role(doc.Role),
	}, nil
}

func (s *scoped) Save(ctx context.Context, p domain.PersistedSession) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sessionDoc{
		ClientID:  s.clientID,
		Token:     p.Token,
		UserID:    p.UserID,
		Role:      string(p.Role),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"client_id": s.clientID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *scoped) RemoveToken(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{"token": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"client_id": s.clientID}, update); err != nil {
		return fmt.Errorf("session remove token: %w", err)
	}
	return nil
}

func (s *scoped) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"client_id": s.clientID}); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
