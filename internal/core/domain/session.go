package domain

import "time"

// Session is the server-side record of a logged-in device/user pairing. Its
// lifetime is independent of the bearer token's own validity: a session id may
// map to at most one live entry, and a lookup after deletion means the session
// expired rather than an error.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	TenantID     string     `json:"tenant_id"`
	Device       DeviceInfo `json:"device"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
}

// IdleExpired reports whether the session has been inactive longer than the
// supplied maximum age.
func (s Session) IdleExpired(at time.Time, maxIdle time.Duration) bool {
	if maxIdle <= 0 {
		return false
	}
	return at.Sub(s.LastActivity) > maxIdle
}

// Duration returns how long the session has existed at the supplied moment.
func (s Session) Duration(at time.Time) time.Duration {
	if at.Before(s.CreatedAt) {
		return 0
	}
	return at.Sub(s.CreatedAt)
}

// SessionHistoryEntry is the login snapshot retained per user for trust
// scoring. Entries survive session deletion so that a returning device is
// still recognized after logout.
type SessionHistoryEntry struct {
	SessionID   string    `json:"session_id"`
	Fingerprint string    `json:"fingerprint"`
	IP          string    `json:"ip"`
	LoginAt     time.Time `json:"login_at"`
}
