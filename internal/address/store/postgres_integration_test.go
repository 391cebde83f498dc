//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"lnaddrd/internal/address"
	"lnaddrd/internal/address/store"
	"lnaddrd/pkg/platform/sentinel"
	"lnaddrd/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payment_addresses"))
}

func (s *PostgresStoreSuite) newRecord(username, domain, token string) *address.PaymentAddress {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	s.Require().NoError(err)
	return &address.PaymentAddress{
		Username:    username,
		Domain:      domain,
		Destination: address.AliasDestination{User: "bob", Domain: "other.example"},
		TokenHash:   hash,
	}
}

func (s *PostgresStoreSuite) TestAddAndGet() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.newRecord("alice", "example.com", "tok")))

	found, err := s.store.Get(ctx, "example.com", "alice")
	s.Require().NoError(err)
	s.Equal("alice", found.Username)
	s.Equal("example.com", found.Domain)
	s.Equal("bob@other.example", found.Destination.String())
	s.False(found.CreatedAt.IsZero(), "created_at assigned by the database")
	s.False(found.UpdatedAt.IsZero(), "updated_at assigned by the database")

	_, err = s.store.Get(ctx, "example.com", "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUniqueConstraint() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.newRecord("alice", "example.com", "tok")))

	err := s.store.Add(ctx, s.newRecord("alice", "example.com", "tok2"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// Same username under another domain is a distinct key.
	s.NoError(s.store.Add(ctx, s.newRecord("alice", "other.example", "tok3")))
}

func (s *PostgresStoreSuite) TestRemove() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.newRecord("alice", "example.com", "tok")))

	s.Run("wrong token leaves the record", func() {
		s.Require().ErrorIs(s.store.Remove(ctx, "example.com", "alice", "wrong"), sentinel.ErrUnauthorized)
		_, err := s.store.Get(ctx, "example.com", "alice")
		s.NoError(err)
	})

	s.Run("correct token deletes, repeat is a no-op", func() {
		s.Require().NoError(s.store.Remove(ctx, "example.com", "alice", "tok"))
		_, err := s.store.Get(ctx, "example.com", "alice")
		s.ErrorIs(err, sentinel.ErrNotFound)

		s.NoError(s.store.Remove(ctx, "example.com", "alice", "tok"))
	})
}

// TestConcurrentRemoveAndReregister drives removals against a re-registration
// of the same key. Every operation must land entirely: no removal may delete
// a record it was not authorized against.
func (s *PostgresStoreSuite) TestConcurrentRemoveAndReregister() {
	ctx := context.Background()

	s.Require().NoError(s.store.Add(ctx, s.newRecord("alice", "example.com", "tok-old")))

	var wg sync.WaitGroup
	var removed, unauthorized atomic.Int32

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			err := s.store.Remove(ctx, "example.com", "alice", "tok-old")
			switch {
			case err == nil:
				removed.Add(1)
			case errors.Is(err, sentinel.ErrUnauthorized):
				unauthorized.Add(1)
			default:
				s.T().Errorf("unexpected remove error: %v", err)
			}
			time.Sleep(time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = s.store.Add(ctx, s.newRecord("alice", "example.com", "tok-new"))
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	// Whatever interleaving happened, the surviving record (if any) must be
	// intact and readable.
	rec, err := s.store.Get(ctx, "example.com", "alice")
	if err == nil {
		s.Equal("bob@other.example", rec.Destination.String())
	} else {
		s.ErrorIs(err, sentinel.ErrNotFound)
	}
}

func (s *PostgresStoreSuite) TestConcurrentUniqueViolation() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Add(ctx, s.newRecord("carol", "example.com", "tok"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should win")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")
}
