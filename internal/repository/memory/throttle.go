package memory

import (
	"context"
	"sync"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
)

// LoginAttemptStore implements port.LoginAttemptStore with an in-process map.
// Lockout policy lives in the usecase layer; this is a plain keyed store.
type LoginAttemptStore struct {
	mu      sync.RWMutex
	records map[string]domain.LoginAttemptRecord
}

// NewLoginAttemptStore creates an empty in-memory attempt store.
func NewLoginAttemptStore() *LoginAttemptStore {
	return &LoginAttemptStore{
		records: make(map[string]domain.LoginAttemptRecord),
	}
}

// Get returns the record for the identifier, or nil when none exists.
func (s *LoginAttemptStore) Get(_ context.Context, identifier string) (*domain.LoginAttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identifier]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores or replaces the record.
func (s *LoginAttemptStore) Put(_ context.Context, record domain.LoginAttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Identifier] = record
	return nil
}

// Delete clears the record. Deleting an absent record is a no-op.
func (s *LoginAttemptStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identifier)
	return nil
}
