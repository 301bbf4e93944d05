package port

import (
	"context"
	"time"
)

// RevocationList tracks tokens invalidated before their natural expiry.
// Entries carry their own TTL equal to the token's remaining validity so that
// eviction never un-revokes a token early.
type RevocationList interface {
	Revoke(ctx context.Context, tokenHash, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	// EvictExpired drops entries whose TTL has elapsed and returns how many
	// were removed. Backends with native TTLs may report zero.
	EvictExpired(ctx context.Context, at time.Time) (int, error)
}
