package port

import (
	"context"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// SessionRegistry is the single source of truth for live sessions. Every
// operation is individually atomic; no cross-operation transactions are
// required. Implementations must be safe under concurrent request handling.
type SessionRegistry interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	// Sweep deletes sessions whose last activity is before the cutoff and
	// returns how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
	// History returns up to limit most recent login snapshots for the user,
	// newest first. History survives session deletion.
	History(ctx context.Context, userID string, limit int) ([]domain.SessionHistoryEntry, error)
}
