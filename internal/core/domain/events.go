package domain

import "time"

// LoginSucceededEvent is emitted after a successful authentication.
type LoginSucceededEvent struct {
	TenantID    string    `json:"tenant_id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Fingerprint string    `json:"fingerprint"`
	TrustScore  int       `json:"trust_score"`
	RiskTier    RiskTier  `json:"risk_tier"`
	IP          string    `json:"ip"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LoginFailedEvent is emitted after a failed authentication attempt.
type LoginFailedEvent struct {
	TenantID   string    `json:"tenant_id"`
	Email      string    `json:"email"`
	Reason     string    `json:"reason"`
	IP         string    `json:"ip"`
	Failures   int       `json:"failures"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AccountLockedEvent is emitted when repeated failures lock an account.
type AccountLockedEvent struct {
	TenantID   string    `json:"tenant_id"`
	Identifier string    `json:"identifier"`
	LockUntil  time.Time `json:"lock_until"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionRevokedEvent is emitted when a session is terminated.
type SessionRevokedEvent struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionsSweptEvent is emitted after a background sweep removes
// idle-expired sessions.
type SessionsSweptEvent struct {
	Removed    int       `json:"removed"`
	OccurredAt time.Time `json:"occurred_at"`
}
