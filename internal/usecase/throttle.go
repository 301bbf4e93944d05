package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/core/port"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
)

// LoginThrottle enforces the consecutive-failure lockout policy over a plain
// keyed attempt store. The policy lives here so backends stay interchangeable.
type LoginThrottle struct {
	store        port.LoginAttemptStore
	maxAttempts  int
	lockDuration time.Duration
	window       time.Duration
	now          func() time.Time
}

// NewLoginThrottle constructs the throttle from lockout settings.
func NewLoginThrottle(store port.LoginAttemptStore, cfg config.LockoutSettings) *LoginThrottle {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	lockDuration := cfg.Duration
	if lockDuration <= 0 {
		lockDuration = 15 * time.Minute
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Hour
	}

	return &LoginThrottle{
		store:        store,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		window:       window,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	if now != nil {
		t.now = now
	}
	return t
}

// Check fails with AccountLockedError while the identifier is locked out.
// Expired locks and stale failure records clear themselves here.
func (t *LoginThrottle) Check(ctx context.Context, identifier string) error {
	record, err := t.store.Get(ctx, identifier)
	if err != nil {
		return fmt.Errorf("load login attempts: %w", err)
	}
	if record == nil {
		return nil
	}

	at := t.now()
	if record.Locked(at) {
		return &AccountLockedError{RetryAfter: record.LockRemaining(at)}
	}

	// Either the lock elapsed or the record went stale; both reset tracking.
	if record.LockUntil != nil || at.Sub(record.LastAttempt) > t.window {
		if err := t.store.Delete(ctx, identifier); err != nil {
			return fmt.Errorf("clear login attempts: %w", err)
		}
	}
	return nil
}

// RecordFailure increments the consecutive failure count and reports whether
// this failure tripped the lockout.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) (int, bool, error) {
	record, err := t.store.Get(ctx, identifier)
	if err != nil {
		return 0, false, fmt.Errorf("load login attempts: %w", err)
	}

	at := t.now()
	switch {
	case record == nil:
		record = &domain.LoginAttemptRecord{Identifier: identifier}
	case record.LockUntil != nil && !record.Locked(at):
		record = &domain.LoginAttemptRecord{Identifier: identifier}
	case at.Sub(record.LastAttempt) > t.window:
		record = &domain.LoginAttemptRecord{Identifier: identifier}
	}

	record.Failures++
	record.LastAttempt = at

	locked := false
	if record.Failures >= t.maxAttempts {
		lockUntil := at.Add(t.lockDuration)
		record.LockUntil = &lockUntil
		locked = true
	}

	if err := t.store.Put(ctx, *record); err != nil {
		return 0, false, fmt.Errorf("store login attempts: %w", err)
	}
	return record.Failures, locked, nil
}

// RecordSuccess clears the identifier's failure record.
func (t *LoginThrottle) RecordSuccess(ctx context.Context, identifier string) error {
	if err := t.store.Delete(ctx, identifier); err != nil {
		return fmt.Errorf("clear login attempts: %w", err)
	}
	return nil
}

// Failures returns the current consecutive failure count for the identifier.
func (t *LoginThrottle) Failures(ctx context.Context, identifier string) (int, error) {
	record, err := t.store.Get(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("load login attempts: %w", err)
	}
	if record == nil || t.now().Sub(record.LastAttempt) > t.window {
		return 0, nil
	}
	return record.Failures, nil
}

// LockDuration exposes the configured lockout window length.
func (t *LoginThrottle) LockDuration() time.Duration {
	return t.lockDuration
}
