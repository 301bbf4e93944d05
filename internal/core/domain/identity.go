package domain

import "time"

// User mirrors the persisted representation in the users table.
// Email is unique within a tenant, not globally.
type User struct {
	ID           string
	TenantID     string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsActive     bool
	MFAEnabled   bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// AccountAge returns how long the account has existed at the supplied moment.
func (u User) AccountAge(at time.Time) time.Duration {
	if u.CreatedAt.IsZero() || at.Before(u.CreatedAt) {
		return 0
	}
	return at.Sub(u.CreatedAt)
}
