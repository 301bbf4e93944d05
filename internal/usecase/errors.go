package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTenantNotFound indicates no tenant matched the request routing data.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantSuspended indicates the resolved tenant is suspended.
	ErrTenantSuspended = errors.New("tenant suspended")
	// ErrTenantMismatch indicates the token's tenant claim does not match the resolved tenant.
	ErrTenantMismatch = errors.New("tenant mismatch")
	// ErrInvalidCredentials covers both unknown user and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates the account is disabled.
	ErrAccountInactive = errors.New("account inactive")
	// ErrAccountLocked indicates the identifier is inside a lockout window.
	ErrAccountLocked = errors.New("account locked")
	// ErrMissingToken indicates no bearer token was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrTokenRevoked indicates the token was revoked before its natural expiry.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrSessionExpired indicates the session is absent despite a structurally valid token.
	ErrSessionExpired = errors.New("session expired")
	// ErrMFARequired indicates the request needs step-up authentication before proceeding.
	ErrMFARequired = errors.New("mfa required")
	// ErrUserNotFound indicates the token references a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientPermissions indicates an authorization failure after successful authentication.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// AccountLockedError carries the remaining lockout duration so callers can
// show a countdown. It matches ErrAccountLocked under errors.Is.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %d seconds", e.RetrySeconds())
}

func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}

// RetrySeconds returns the remaining lockout rounded up to whole seconds.
func (e *AccountLockedError) RetrySeconds() int {
	seconds := int((e.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}
