package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
	"github.com/dipeshss4/tripgo-auth/internal/repository/memory"
)

func sessionEnv(t *testing.T) (*SessionService, *memory.SessionRegistry, *time.Time) {
	t.Helper()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sessions := memory.NewSessionRegistry()
	revocations := memory.NewRevocationList(0).WithClock(clock)

	svc := NewSessionService(
		sessions,
		revocations,
		nil,
		nil,
		zap.NewNop(),
		config.SessionSettings{IdleMaxAge: 24 * time.Hour, SweepInterval: time.Hour},
		config.RevocationSettings{SweepInterval: 10 * time.Minute},
	).WithClock(clock)

	return svc, sessions, &now
}

func addSession(t *testing.T, sessions *memory.SessionRegistry, id, userID string, lastActivity time.Time) {
	t.Helper()

	err := sessions.Create(context.Background(), domain.Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestSessionService_ListNewestFirst(t *testing.T) {
	svc, sessions, now := sessionEnv(t)
	ctx := context.Background()

	addSession(t, sessions, "old", "u-1", now.Add(-2*time.Hour))
	addSession(t, sessions, "new", "u-1", now.Add(-time.Minute))
	addSession(t, sessions, "other", "u-2", *now)

	list, err := svc.ListForUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("sessions = %d, want 2", len(list))
	}
	if list[0].ID != "new" {
		t.Fatalf("first = %q, want new", list[0].ID)
	}
}

func TestSessionService_RevokeOwnershipScoped(t *testing.T) {
	svc, sessions, now := sessionEnv(t)
	ctx := context.Background()

	addSession(t, sessions, "s-1", "u-1", *now)

	// Another user revoking the session behaves as already gone.
	if err := svc.Revoke(ctx, "u-2", "s-1"); err != nil {
		t.Fatalf("cross-user Revoke: %v", err)
	}
	if _, err := sessions.Get(ctx, "s-1"); err != nil {
		t.Fatalf("session removed by non-owner: %v", err)
	}

	if err := svc.Revoke(ctx, "u-1", "s-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := svc.Revoke(ctx, "u-1", "s-1"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
}

func TestSessionService_RevokeAll(t *testing.T) {
	svc, sessions, now := sessionEnv(t)
	ctx := context.Background()

	addSession(t, sessions, "s-1", "u-1", *now)
	addSession(t, sessions, "s-2", "u-1", *now)
	addSession(t, sessions, "other", "u-2", *now)

	removed, err := svc.RevokeAll(ctx, "u-1")
	if err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	others, err := svc.ListForUser(ctx, "u-2")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("other user's sessions affected: %d", len(others))
	}
}

func TestSessionService_SweepSessions(t *testing.T) {
	svc, sessions, now := sessionEnv(t)
	ctx := context.Background()

	addSession(t, sessions, "idle", "u-1", now.Add(-25*time.Hour))
	addSession(t, sessions, "live", "u-1", now.Add(-time.Hour))

	removed, err := svc.SweepSessions(ctx)
	if err != nil {
		t.Fatalf("SweepSessions: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	list, err := svc.ListForUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 1 || list[0].ID != "live" {
		t.Fatalf("surviving sessions = %+v", list)
	}
}

func TestSessionService_SweepRevocations(t *testing.T) {
	svc, _, now := sessionEnv(t)
	ctx := context.Background()

	revocations := memory.NewRevocationList(0).WithClock(func() time.Time { return *now })
	svc.revocations = revocations

	if err := revocations.Revoke(ctx, "hash-short", "logout", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := revocations.Revoke(ctx, "hash-long", "logout", time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	*now = now.Add(5 * time.Minute)
	removed, err := svc.SweepRevocations(ctx)
	if err != nil {
		t.Fatalf("SweepRevocations: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}
