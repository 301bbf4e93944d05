package port

import (
	"context"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// UserRepository exposes persistence behavior for users. Lookups by email are
// always tenant-scoped: the same address in another tenant must not match.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
