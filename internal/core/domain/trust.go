package domain

import "time"

// RiskTier buckets a trust score into the step-up decision levels.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// TierForScore maps a trust score to its risk tier.
func TierForScore(score int) RiskTier {
	switch {
	case score > 70:
		return RiskLow
	case score > 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// LoginAttemptRecord tracks consecutive login failures for one identifier.
// Created on first failure, cleared on success, and superseded once LockUntil
// passes.
type LoginAttemptRecord struct {
	Identifier  string     `json:"identifier"`
	Failures    int        `json:"failures"`
	LastAttempt time.Time  `json:"last_attempt"`
	LockUntil   *time.Time `json:"lock_until,omitempty"`
}

// Locked reports whether the record is inside an active lockout window.
func (r LoginAttemptRecord) Locked(at time.Time) bool {
	return r.LockUntil != nil && r.LockUntil.After(at)
}

// LockRemaining returns how long the lockout lasts from the supplied moment.
func (r LoginAttemptRecord) LockRemaining(at time.Time) time.Duration {
	if !r.Locked(at) {
		return 0
	}
	return r.LockUntil.Sub(at)
}

// SecurityContext is the per-request risk evaluation. It is recomputed on
// every authenticated request and never cached beyond the request lifecycle.
type SecurityContext struct {
	TrustScore      int
	RiskTier        RiskTier
	SessionDuration time.Duration
	RecentFailures  int
	Suspicious      bool
}

// RequiresStepUp reports whether an MFA-gated route must refuse the request
// until step-up authentication completes.
func (c SecurityContext) RequiresStepUp() bool {
	return c.RiskTier == RiskHigh || c.TrustScore < 30
}
