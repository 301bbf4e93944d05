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
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

const (
	defaultSessionPrefix = "tripgo"
	historyLen           = 10
)

// SessionRegistry implements port.SessionRegistry backed by Redis. Sessions
// are stored as JSON values, a per-user set indexes ownership, and a capped
// list keeps the login history that survives session deletion.
type SessionRegistry struct {
	client *red.Client
	prefix string
}

// NewSessionRegistry wires a Redis client into a session registry.
func NewSessionRegistry(client *red.Client, keyPrefix string) *SessionRegistry {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	return &SessionRegistry{client: client, prefix: prefix}
}

func (r *SessionRegistry) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, id)
}

func (r *SessionRegistry) userKey(userID string) string {
	return fmt.Sprintf("%s:user-sessions:%s", r.prefix, userID)
}

func (r *SessionRegistry) historyKey(userID string) string {
	return fmt.Sprintf("%s:history:%s", r.prefix, userID)
}

// Create persists the session, indexes it under the user, and prepends a
// login snapshot to the user's history list.
func (r *SessionRegistry) Create(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	entry, err := json.Marshal(domain.SessionHistoryEntry{
		SessionID:   session.ID,
		Fingerprint: session.Device.Fingerprint,
		IP:          session.Device.IP,
		LoginAt:     session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, 0)
	pipe.SAdd(ctx, r.userKey(session.UserID), session.ID)
	pipe.LPush(ctx, r.historyKey(session.UserID), entry)
	pipe.LTrim(ctx, r.historyKey(session.UserID), 0, historyLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis create session: %w", err)
	}

	return nil
}

// Get returns the session or repository.ErrNotFound.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Touch updates the session's last activity timestamp.
func (r *SessionRegistry) Touch(ctx context.Context, sessionID string, at time.Time) error {
	session, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	session.LastActivity = at
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(sessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis touch session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *SessionRegistry) Delete(ctx context.Context, sessionID string) error {
	session, err := r.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(sessionID))
	pipe.SRem(ctx, r.userKey(session.UserID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every session indexed under the user.
func (r *SessionRegistry) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list user sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id))
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.Del(ctx, r.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis delete user sessions: %w", err)
	}

	return int(del.Val()), nil
}

// ListByUser returns the user's live sessions.
func (r *SessionRegistry) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list user sessions: %w", err)
	}

	var sessions []domain.Session
	for _, id := range ids {
		session, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Index entry with no backing key; drop it.
				_ = r.client.SRem(ctx, r.userKey(userID), id).Err()
				continue
			}
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// Sweep deletes sessions whose last activity predates the cutoff.
func (r *SessionRegistry) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	pattern := fmt.Sprintf("%s:session:*", r.prefix)

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan sessions: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, red.Nil) {
					continue
				}
				return removed, fmt.Errorf("redis get session: %w", err)
			}

			var session domain.Session
			if err := json.Unmarshal(data, &session); err != nil {
				return removed, fmt.Errorf("decode session: %w", err)
			}

			if session.LastActivity.Before(cutoff) {
				pipe := r.client.TxPipeline()
				pipe.Del(ctx, key)
				pipe.SRem(ctx, r.userKey(session.UserID), session.ID)
				if _, err := pipe.Exec(ctx); err != nil {
					return removed, fmt.Errorf("redis sweep session: %w", err)
				}
				removed++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

// History returns up to limit most recent login snapshots, newest first.
func (r *SessionRegistry) History(ctx context.Context, userID string, limit int) ([]domain.SessionHistoryEntry, error) {
	stop := int64(historyLen - 1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := r.client.LRange(ctx, r.historyKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history: %w", err)
	}

	entries := make([]domain.SessionHistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.SessionHistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
