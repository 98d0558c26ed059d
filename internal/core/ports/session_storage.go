package ports

import (
	"context"

	"github.com/poolconsultant/portal/internal/core/domain"
)

// SessionStorage persists the session keys of a single client across
// reloads. Save and Clear must each be applied atomically.
type SessionStorage interface {
	Load(ctx context.Context) (domain.PersistedSession, error)
	Save(ctx context.Context, s domain.PersistedSession) error
	// RemoveToken deletes only the token key, leaving user id and role.
	RemoveToken(ctx context.Context) error
	Clear(ctx context.Context) error
}

// SessionStorageProvider hands out the storage scoped to one client id.
type SessionStorageProvider interface {
	Scope(clientID string) SessionStorage
}
