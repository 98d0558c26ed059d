package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

const (
	fieldToken  = "token"
	fieldUserID = "user_id"
	fieldRole   = "role"
)

// SessionStorage persists client sessions as Redis hashes.
// Key format: portal:session:<client_id>
type SessionStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStorage wraps the given Redis client. Keys expire after ttl of
// inactivity; a default is used when ttl <= 0.
func NewSessionStorage(client *redis.Client, ttl time.Duration) *SessionStorage {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStorage{client: client, ttl: ttl}
}

// Scope satisfies ports.SessionStorageProvider.
func (s *SessionStorage) Scope(clientID string) ports.SessionStorage {
	return &scoped{client: s.client, ttl: s.ttl, key: s.key(clientID)}
}

func (s *SessionStorage) key(clientID string) string {
	return fmt.Sprintf("portal:session:%s", clientID)
}

type scoped struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

func (s *scoped) Load(ctx context.Context) (domain.PersistedSession, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return domain.PersistedSession{}, fmt.Errorf("session load: %w", err)
	}

	p := domain.PersistedSession{
		Token: fields[fieldToken],
		Role:  domain.Role(fields[fieldRole]),
	}
	if raw := fields[fieldUserID]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.PersistedSession{}, fmt.Errorf("session load: user_id: %w", err)
		}
		p.UserID = id
	}
	return p, nil
}

// Save replaces all keys in one MULTI/EXEC so readers never see a mix of
// the old and new session.
func (s *scoped) Save(ctx context.Context, p domain.PersistedSession) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			fieldToken, p.Token,
			fieldUserID, strconv.FormatInt(p.UserID, 10),
			fieldRole, string(p.Role),
		)
		pipe.Expire(ctx, s.key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *scoped) RemoveToken(ctx context.Context) error {
	if err := s.client.HDel(ctx, s.key, fieldToken).Err(); err != nil {
		return fmt.Errorf("session remove token: %w", err)
	}
	return nil
}

func (s *scoped) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
