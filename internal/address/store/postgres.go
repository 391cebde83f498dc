package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"lnaddrd/internal/address"
	"lnaddrd/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Postgres persists payment addresses in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed payment address store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded schema. Safe to run on every boot.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply payment_addresses schema: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, domain, username string) (*address.PaymentAddress, error) {
	const query = `
		SELECT username, domain, destination, authentication_token_hash, created_at, updated_at
		FROM payment_addresses
		WHERE domain = $1 AND username = $2
	`

	var (
		record    address.PaymentAddress
		destText  string
		tokenHash string
	)
	err := s.db.QueryRowContext(ctx, query, domain, username).Scan(
		&record.Username, &record.Domain, &destText, &tokenHash,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get payment address: %w", err)
	}

	destination, err := address.ParseDestination(destText)
	if err != nil {
		// A stored value that no longer parses is corruption, not absence.
		return nil, fmt.Errorf("corrupt destination stored for %s@%s: %w", username, domain, err)
	}
	record.Destination = destination
	record.TokenHash = []byte(tokenHash)

	return &record, nil
}

func (s *Postgres) Add(ctx context.Context, record *address.PaymentAddress) error {
	const query = `
		INSERT INTO payment_addresses (username, domain, destination, authentication_token_hash)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.Username, record.Domain, record.Destination.String(), string(record.TokenHash),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("add payment address: %w", err)
	}
	return nil
}

// Remove reads the stored hash, verifies the token and deletes the row inside
// one transaction. The row lock taken by FOR UPDATE keeps a concurrent
// re-registration or removal of the same key from interleaving between the
// check and the delete.
func (s *Postgres) Remove(ctx context.Context, domain, username, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tokenHash string
	err = tx.QueryRowContext(ctx, `
		SELECT authentication_token_hash
		FROM payment_addresses
		WHERE domain = $1 AND username = $2
		FOR UPDATE
	`, domain, username).Scan(&tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Removing a nonexistent address is idempotent.
			return nil
		}
		return fmt.Errorf("load payment address for removal: %w", err)
	}

	if !verifyToken([]byte(tokenHash), token) {
		return sentinel.ErrUnauthorized
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM payment_addresses
		WHERE domain = $1 AND username = $2
	`, domain, username); err != nil {
		return fmt.Errorf("delete payment address: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	return nil
}
