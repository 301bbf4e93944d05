package port

import (
	"context"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// SecurityEventPublisher publishes authentication lifecycle events to the
// message bus. Publishing is best-effort; auth flows never fail on a publish
// error.
type SecurityEventPublisher interface {
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error
	PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error
	PublishSessionsSwept(ctx context.Context, event domain.SessionsSweptEvent) error
}
