// Package store persists payment-address records. Two implementations
// conform to Store: an in-memory map for tests and development, and Postgres
// for production.
package store

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"lnaddrd/internal/address"
)

// Store is the storage boundary for payment addresses.
//
// Implementations own all timestamp assignment and must make Remove's
// token-check-and-delete atomic with respect to concurrent registration or
// removal of the same key.
type Store interface {
	// Get returns the record for (domain, username) or sentinel.ErrNotFound.
	// A stored destination that no longer parses is a storage integrity
	// failure, not a not-found.
	Get(ctx context.Context, domain, username string) (*address.PaymentAddress, error)

	// Add inserts a new record. A duplicate (domain, username) key yields
	// sentinel.ErrConflict; existing records are never overwritten.
	Add(ctx context.Context, record *address.PaymentAddress) error

	// Remove deletes the record after verifying token against the stored
	// hash, as one atomic unit. A missing record is a no-op. A mismatched
	// token yields sentinel.ErrUnauthorized and leaves the record untouched.
	Remove(ctx context.Context, domain, username, token string) error
}

// verifyToken checks a presented bearer token against its stored bcrypt
// hash. bcrypt's comparison is constant time.
func verifyToken(hash []byte, token string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(token)) == nil
}
