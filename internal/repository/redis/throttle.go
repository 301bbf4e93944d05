package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

const defaultThrottlePrefix = "tripgo"

// LoginAttemptStore implements port.LoginAttemptStore backed by Redis.
// Records carry a TTL so abandoned failure counters age out on their own.
type LoginAttemptStore struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewLoginAttemptStore wires a Redis client into an attempt store. ttl bounds
// how long a record outlives its last write; zero disables expiry.
func NewLoginAttemptStore(client *red.Client, keyPrefix string, ttl time.Duration) *LoginAttemptStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultThrottlePrefix
	}
	return &LoginAttemptStore{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the record for the identifier, or nil when none exists.
func (s *LoginAttemptStore) Get(ctx context.Context, identifier string) (*domain.LoginAttemptRecord, error) {
	data, err := s.client.Get(ctx, s.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get login attempts: %w", err)
	}

	var record domain.LoginAttemptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode login attempts: %w", err)
	}
	return &record, nil
}

// Put stores or replaces the record.
func (s *LoginAttemptStore) Put(ctx context.Context, record domain.LoginAttemptRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode login attempts: %w", err)
	}

	if err := s.client.Set(ctx, s.key(record.Identifier), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set login attempts: %w", err)
	}
	return nil
}

// Delete clears the record. Deleting an absent record is a no-op.
func (s *LoginAttemptStore) Delete(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("redis delete login attempts: %w", err)
	}
	return nil
}

func (s *LoginAttemptStore) key(identifier string) string {
	return fmt.Sprintf("%s:login-attempts:%s", s.prefix, identifier)
}
