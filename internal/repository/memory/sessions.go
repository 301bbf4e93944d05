package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

// historyCap bounds the per-user login snapshot ring.
const historyCap = 10

// SessionRegistry implements port.SessionRegistry with in-process maps.
// Suitable for single-instance deployments and tests.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	history  map[string][]domain.SessionHistoryEntry
}

// NewSessionRegistry creates an empty in-memory session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]domain.Session),
		history:  make(map[string][]domain.SessionHistoryEntry),
	}
}

// Create stores the session and prepends a login snapshot to the user's
// history ring. History survives session deletion.
func (r *SessionRegistry) Create(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session

	entries := append([]domain.SessionHistoryEntry{{
		SessionID:   session.ID,
		Fingerprint: session.Device.Fingerprint,
		IP:          session.Device.IP,
		LoginAt:     session.CreatedAt,
	}}, r.history[session.UserID]...)
	if len(entries) > historyCap {
		entries = entries[:historyCap]
	}
	r.history[session.UserID] = entries

	return nil
}

// Get returns the session or repository.ErrNotFound.
func (r *SessionRegistry) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

// Touch updates the session's last activity timestamp.
func (r *SessionRegistry) Touch(_ context.Context, sessionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.LastActivity = at
	r.sessions[sessionID] = session
	return nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *SessionRegistry) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// DeleteAllForUser removes every session owned by the user.
func (r *SessionRegistry) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// ListByUser returns the user's live sessions.
func (r *SessionRegistry) ListByUser(_ context.Context, userID string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []domain.Session
	for _, session := range r.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// Sweep deletes sessions whose last activity predates the cutoff.
func (r *SessionRegistry) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// History returns up to limit most recent login snapshots, newest first.
func (r *SessionRegistry) History(_ context.Context, userID string, limit int) ([]domain.SessionHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.history[userID]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]domain.SessionHistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}
