package memory

import (
	"context"
	"sync"
	"time"
)

type revocationEntry struct {
	reason    string
	expiresAt time.Time
}

// RevocationList implements port.RevocationList with an in-process map.
// Each entry carries its own expiry so eviction never un-revokes a token
// before its natural end of life.
type RevocationList struct {
	mu         sync.RWMutex
	entries    map[string]revocationEntry
	maxEntries int
	now        func() time.Time
}

// NewRevocationList creates an in-memory revocation list. maxEntries bounds
// the map; zero means unbounded. When full, expired entries are evicted
// before accepting new ones.
func NewRevocationList(maxEntries int) *RevocationList {
	return &RevocationList{
		entries:    make(map[string]revocationEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (r *RevocationList) WithClock(now func() time.Time) *RevocationList {
	if now != nil {
		r.now = now
	}
	return r
}

// Revoke records the token hash for the token's remaining validity.
func (r *RevocationList) Revoke(_ context.Context, tokenHash, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now()
	if r.maxEntries > 0 && len(r.entries) >= r.maxEntries {
		r.evictLocked(at)
	}

	r.entries[tokenHash] = revocationEntry{
		reason:    reason,
		expiresAt: at.Add(ttl),
	}
	return nil
}

// IsRevoked reports whether the token hash has a live revocation entry.
func (r *RevocationList) IsRevoked(_ context.Context, tokenHash string) (bool, error) {
	r.mu.RLock()
	entry, ok := r.entries[tokenHash]
	r.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.After(r.now()) {
		// Lazy eviction keeps reads cheap between sweep passes.
		r.mu.Lock()
		if cur, ok := r.entries[tokenHash]; ok && !cur.expiresAt.After(r.now()) {
			delete(r.entries, tokenHash)
		}
		r.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// EvictExpired drops entries whose expiry has passed.
func (r *RevocationList) EvictExpired(_ context.Context, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.evictLocked(at), nil
}

func (r *RevocationList) evictLocked(at time.Time) int {
	removed := 0
	for hash, entry := range r.entries {
		if !entry.expiresAt.After(at) {
			delete(r.entries, hash)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries. Intended for tests and metrics.
func (r *RevocationList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
