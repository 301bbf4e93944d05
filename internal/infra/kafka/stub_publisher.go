package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// StubPublisher logs security events instead of publishing them. Used when
// no Kafka brokers are configured, such as local development and tests.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher creates a logging-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	s.logger.Debug("stub event: login succeeded",
		zap.String("user_id", event.UserID),
		zap.String("session_id", event.SessionID),
	)
	return nil
}

func (s *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	s.logger.Debug("stub event: login failed",
		zap.String("tenant_id", event.TenantID),
		zap.Int("failures", event.Failures),
	)
	return nil
}

func (s *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	s.logger.Debug("stub event: account locked",
		zap.String("tenant_id", event.TenantID),
		zap.Time("lock_until", event.LockUntil),
	)
	return nil
}

func (s *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	s.logger.Debug("stub event: session revoked",
		zap.String("user_id", event.UserID),
		zap.String("session_id", event.SessionID),
		zap.String("reason", event.Reason),
	)
	return nil
}

func (s *StubPublisher) PublishSessionsSwept(_ context.Context, event domain.SessionsSweptEvent) error {
	s.logger.Debug("stub event: sessions swept",
		zap.Int("removed", event.Removed),
	)
	return nil
}
