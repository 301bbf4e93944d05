package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
)

const defaultRevocationPrefix = "tripgo"

// RevocationList implements port.RevocationList backed by Redis. Entries
// expire through native key TTLs, so EvictExpired has nothing to do.
type RevocationList struct {
	client *red.Client
	prefix string
}

// NewRevocationList wires a Redis client into a revocation list.
func NewRevocationList(client *red.Client, keyPrefix string) *RevocationList {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}
	return &RevocationList{client: client, prefix: prefix}
}

// Revoke stores the token hash with reason for the token's remaining validity.
func (r *RevocationList) Revoke(ctx context.Context, tokenHash, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := r.key(tokenHash)
	if key == "" {
		return errors.New("token hash must not be empty")
	}

	if err := r.client.Set(ctx, key, reason, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token hash has a live revocation entry.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	key := r.key(tokenHash)
	if key == "" {
		return false, errors.New("token hash must not be empty")
	}

	if err := r.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get revoked token: %w", err)
	}
	return true, nil
}

// EvictExpired is a no-op: Redis expires entries via key TTLs.
func (r *RevocationList) EvictExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *RevocationList) key(tokenHash string) string {
	trimmed := strings.TrimSpace(tokenHash)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:revoked:%s", r.prefix, trimmed)
}
