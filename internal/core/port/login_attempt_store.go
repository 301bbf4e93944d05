package port

import (
	"context"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// LoginAttemptStore persists failure-tracking records for the login throttle.
// It is a plain keyed store: lockout policy lives in the usecase layer so a
// networked backend can replace the in-memory map without policy changes.
type LoginAttemptStore interface {
	Get(ctx context.Context, identifier string) (*domain.LoginAttemptRecord, error)
	Put(ctx context.Context, record domain.LoginAttemptRecord) error
	// Delete clears the record. Deleting an absent record is a no-op.
	Delete(ctx context.Context, identifier string) error
}
