package ports

import (
	"context"

	"github.com/poolconsultant/portal/internal/core/domain"
)

// SessionEventRepository stores session audit events.
type SessionEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.SessionEvent) error
}

// SessionEventSink accepts events for asynchronous recording.
type SessionEventSink interface {
	Enqueue(event domain.SessionEvent)
}
