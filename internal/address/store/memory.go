package store

import (
	"context"
	"sync"
	"time"

	"lnaddrd/internal/address"
	"lnaddrd/pkg/platform/sentinel"
)

type key struct {
	domain   string
	username string
}

// InMemory keeps records in a mutex-guarded map. Substitutable for Postgres
// in unit tests and single-process development setups.
type InMemory struct {
	mu      sync.RWMutex
	records map[key]address.PaymentAddress
	clock   func() time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithClock sets the timestamp source for testability.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		records: make(map[key]address.PaymentAddress),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemory) Get(_ context.Context, domain, username string) (*address.PaymentAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key{domain: domain, username: username}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (s *InMemory) Add(_ context.Context, record *address.PaymentAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{domain: record.Domain, username: record.Username}
	if _, exists := s.records[k]; exists {
		return sentinel.ErrConflict
	}

	stored := *record
	now := s.clock()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.records[k] = stored
	return nil
}

func (s *InMemory) Remove(_ context.Context, domain, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{domain: domain, username: username}
	record, ok := s.records[k]
	if !ok {
		// Removing a nonexistent address is idempotent.
		return nil
	}

	if !verifyToken(record.TokenHash, token) {
		return sentinel.ErrUnauthorized
	}

	delete(s.records, k)
	return nil
}
