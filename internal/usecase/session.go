package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/core/port"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
	"github.com/dipeshss4/tripgo-auth/internal/infra/telemetry"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

// SessionService manages session listing, revocation, and the background
// sweeps for idle sessions and expired revocation entries.
type SessionService struct {
	sessions    port.SessionRegistry
	revocations port.RevocationList
	events      port.SecurityEventPublisher
	metrics     *telemetry.Metrics
	log         *zap.Logger

	idleMaxAge       time.Duration
	sweepInterval    time.Duration
	revocationsEvery time.Duration
	now              func() time.Time
}

// NewSessionService constructs the session manager from session and
// revocation settings.
func NewSessionService(
	sessions port.SessionRegistry,
	revocations port.RevocationList,
	events port.SecurityEventPublisher,
	metrics *telemetry.Metrics,
	log *zap.Logger,
	sessionCfg config.SessionSettings,
	revocationCfg config.RevocationSettings,
) *SessionService {
	idleMaxAge := sessionCfg.IdleMaxAge
	if idleMaxAge <= 0 {
		idleMaxAge = 24 * time.Hour
	}
	sweepInterval := sessionCfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	revocationsEvery := revocationCfg.SweepInterval
	if revocationsEvery <= 0 {
		revocationsEvery = 10 * time.Minute
	}

	return &SessionService{
		sessions:         sessions,
		revocations:      revocations,
		events:           events,
		metrics:          metrics,
		log:              log,
		idleMaxAge:       idleMaxAge,
		sweepInterval:    sweepInterval,
		revocationsEvery: revocationsEvery,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	if now != nil {
		s.now = now
	}
	return s
}

// ListForUser returns the user's live sessions, newest first.
func (s *SessionService) ListForUser(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Revoke deletes one of the user's sessions. Unknown ids and sessions owned
// by someone else behave as already gone.
func (s *SessionService) Revoke(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}
	if session.UserID != userID {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.publishRevoked(ctx, session.TenantID, userID, sessionID, "user_revoked")
	return nil
}

// RevokeAll deletes every session the user owns and returns how many went.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) (int, error) {
	removed, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}

	if removed > 0 {
		s.publishRevoked(ctx, "", userID, "", "user_revoked_all")
	}
	return removed, nil
}

// SweepSessions removes sessions idle past the maximum age.
func (s *SessionService) SweepSessions(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.idleMaxAge)
	removed, err := s.sessions.Sweep(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}

	if removed > 0 {
		s.metrics.RecordSessionsSwept(removed)
		if s.events != nil {
			event := domain.SessionsSweptEvent{Removed: removed, OccurredAt: s.now()}
			if err := s.events.PublishSessionsSwept(ctx, event); err != nil {
				s.log.Warn("publish sessions swept event failed", zap.Error(err))
			}
		}
		s.log.Info("idle sessions swept", zap.Int("removed", removed))
	}
	return removed, nil
}

// SweepRevocations evicts expired revocation entries. TTL-native backends
// report zero here.
func (s *SessionService) SweepRevocations(ctx context.Context) (int, error) {
	removed, err := s.revocations.EvictExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("evict revocations: %w", err)
	}
	if removed > 0 {
		s.log.Debug("expired revocations evicted", zap.Int("removed", removed))
	}
	return removed, nil
}

// RunSweeper drives both periodic sweeps until the context is canceled.
func (s *SessionService) RunSweeper(ctx context.Context) {
	s.metrics.SetSweeperRunning(true)
	defer s.metrics.SetSweeperRunning(false)

	sessionTicker := time.NewTicker(s.sweepInterval)
	defer sessionTicker.Stop()
	revocationTicker := time.NewTicker(s.revocationsEvery)
	defer revocationTicker.Stop()

	s.log.Info("sweeper started",
		zap.Duration("session_interval", s.sweepInterval),
		zap.Duration("revocation_interval", s.revocationsEvery),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-sessionTicker.C:
			if _, err := s.SweepSessions(ctx); err != nil {
				s.log.Error("session sweep failed", zap.Error(err))
			}
		case <-revocationTicker.C:
			if _, err := s.SweepRevocations(ctx); err != nil {
				s.log.Error("revocation sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *SessionService) publishRevoked(ctx context.Context, tenantID, userID, sessionID, reason string) {
	if s.events == nil {
		return
	}
	event := domain.SessionRevokedEvent{
		TenantID:   tenantID,
		UserID:     userID,
		SessionID:  sessionID,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishSessionRevoked(ctx, event); err != nil {
		s.log.Warn("publish session revoked event failed", zap.Error(err))
	}
}
