package redis

import (
	"context"
	"testing"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

func TestLoginAttemptStore_RoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewLoginAttemptStore(client, "tripgo", time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "tenant-1:user@example.test")
	if err != nil {
		t.Fatalf("Get empty: %v", err)
	}
	if got != nil {
		t.Fatalf("record = %+v, want nil", got)
	}

	now := time.Now().UTC().Truncate(time.Second)
	lockUntil := now.Add(15 * time.Minute)
	record := domain.LoginAttemptRecord{
		Identifier:  "tenant-1:user@example.test",
		Failures:    5,
		LastAttempt: now,
		LockUntil:   &lockUntil,
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err = store.Get(ctx, record.Identifier)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Failures != 5 {
		t.Fatalf("record = %+v, want 5 failures", got)
	}
	if got.LockUntil == nil || !got.LockUntil.Equal(lockUntil) {
		t.Fatalf("lock until = %v, want %v", got.LockUntil, lockUntil)
	}

	if err := store.Delete(ctx, record.Identifier); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Get(ctx, record.Identifier)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("record survived delete: %+v", got)
	}
}

func TestLoginAttemptStore_RecordsAgeOut(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewLoginAttemptStore(client, "tripgo", time.Hour)
	ctx := context.Background()

	record := domain.LoginAttemptRecord{
		Identifier:  "tenant-1:user@example.test",
		Failures:    2,
		LastAttempt: time.Now().UTC(),
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	server.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, record.Identifier)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("record survived ttl: %+v", got)
	}
}
