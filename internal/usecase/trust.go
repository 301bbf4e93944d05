package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/core/port"
)

// historyWindow is how many recent login snapshots feed the score.
const historyWindow = 10

// TrustService computes the per-request trust score. Scoring is additive and
// deterministic given the same inputs and clock: base 50, bonuses for a known
// fingerprint, IP consistency, daytime login, and account age, clamped to
// [0,100]. It gates step-up authentication, it is not a security boundary.
type TrustService struct {
	sessions port.SessionRegistry
	now      func() time.Time
}

// NewTrustService constructs a trust scorer over the session registry.
func NewTrustService(sessions port.SessionRegistry) *TrustService {
	return &TrustService{
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *TrustService) WithClock(now func() time.Time) *TrustService {
	if now != nil {
		s.now = now
	}
	return s
}

// Evaluate computes the security context for a user on a device. session may
// be nil during login, before the new session exists; recentFailures comes
// from the login throttle when available. The session's own login snapshot is
// excluded from the history bonuses so a score mid-session reflects the
// device's standing before this login, not the login itself.
func (s *TrustService) Evaluate(ctx context.Context, user *domain.User, device domain.DeviceInfo, session *domain.Session, recentFailures int) (domain.SecurityContext, error) {
	history, err := s.sessions.History(ctx, user.ID, historyWindow)
	if err != nil {
		return domain.SecurityContext{}, fmt.Errorf("load session history: %w", err)
	}

	at := s.now()
	score := 50

	known := false
	ipMatches := 0
	considered := 0
	for _, entry := range history {
		if session != nil && entry.SessionID != "" && entry.SessionID == session.ID {
			continue
		}
		considered++
		if entry.Fingerprint == device.Fingerprint {
			known = true
		}
		if entry.IP != "" && entry.IP == device.IP {
			ipMatches++
		}
	}

	if known {
		score += 20
	}
	if considered > 0 {
		score += int(15 * float64(ipMatches) / float64(considered))
	}
	if hour := at.Hour(); hour >= 6 && hour < 22 {
		score += 10
	}

	months := int(at.Sub(user.CreatedAt).Hours() / (24 * 30))
	ageBonus := 2 * months
	if ageBonus > 20 {
		ageBonus = 20
	}
	if ageBonus > 0 {
		score += ageBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var duration time.Duration
	if session != nil {
		duration = session.Duration(at)
	}

	return domain.SecurityContext{
		TrustScore:      score,
		RiskTier:        domain.TierForScore(score),
		SessionDuration: duration,
		RecentFailures:  recentFailures,
		Suspicious:      recentFailures >= 3 || (considered > 0 && !known),
	}, nil
}
