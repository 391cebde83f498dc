// Package service holds the resolution and registration business logic:
// domain whitelisting, token issuance, and orchestration of the store and
// the LNURL client.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"lnaddrd/internal/address"
	"lnaddrd/internal/address/store"
	"lnaddrd/internal/lnurl"
	"lnaddrd/internal/platform/metrics"
)

var (
	// ErrUnsupportedDomain rejects registration under a domain this instance
	// does not serve.
	ErrUnsupportedDomain = errors.New("unsupported domain")

	// ErrInvalidUsername rejects registration with an empty username.
	ErrInvalidUsername = errors.New("username is required")
)

// ManifestClient fetches the pay manifest behind a destination URL.
type ManifestClient interface {
	FetchManifest(ctx context.Context, url string) (*lnurl.PayResponse, error)
}

// Service implements the payment-address directory operations. Safe for
// concurrent use; the domain list is immutable after construction.
type Service struct {
	store   store.Store
	client  ManifestClient
	domains []string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs the service. store, client and at least one domain are
// required; logger and metrics may be nil.
func New(st store.Store, client ManifestClient, domains []string, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if st == nil {
		return nil, errors.New("address store is required")
	}
	if client == nil {
		return nil, errors.New("manifest client is required")
	}
	if len(domains) == 0 {
		return nil, errors.New("at least one served domain is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		client:  client,
		domains: slices.Clone(domains),
		logger:  logger,
		metrics: m,
	}, nil
}

// ListDomains returns the statically configured domains, in configuration
// order. Never touches storage.
func (s *Service) ListDomains() []string {
	return slices.Clone(s.domains)
}

// GetDestination looks up the stored destination for an address. Absence is
// sentinel.ErrNotFound, not a failure. The destination is returned as stored;
// no network call is made to check that it is still live.
func (s *Service) GetDestination(ctx context.Context, domain, username string) (address.Destination, error) {
	record, err := s.store.Get(ctx, domain, username)
	if err != nil {
		return nil, err
	}
	return record.Destination, nil
}

// GetManifest resolves the stored destination and fetches its pay manifest.
// Absence of the record is sentinel.ErrNotFound; a fetch failure surfaces
// with its kind (lnurl.ErrTransport or lnurl.ErrWrongManifestKind) intact.
func (s *Service) GetManifest(ctx context.Context, domain, username string) (*lnurl.PayResponse, error) {
	record, err := s.store.Get(ctx, domain, username)
	if err != nil {
		return nil, err
	}

	manifest, err := s.client.FetchManifest(ctx, record.Destination.URL())
	if err != nil {
		s.metrics.RecordManifestFetch(fetchOutcome(err))
		return nil, fmt.Errorf("fetch manifest for %s: %w", record.Address(), err)
	}
	s.metrics.RecordManifestFetch("ok")

	return manifest, nil
}

// Register creates a payment address pointing at destinationText and issues
// its removal token. The token is returned exactly once and stored only as a
// hash.
func (s *Service) Register(ctx context.Context, domain, username, destinationText string) (*address.Registration, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if !slices.Contains(s.domains, domain) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDomain, domain)
	}

	destination, err := address.ParseDestination(destinationText)
	if err != nil {
		return nil, err
	}

	token, err := newAuthenticationToken()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash authentication token: %w", err)
	}

	record := &address.PaymentAddress{
		Username:    username,
		Domain:      domain,
		Destination: destination,
		TokenHash:   hash,
	}
	if err := s.store.Add(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.IncrementRegistered()
	s.logger.InfoContext(ctx, "registered payment address", "address", record.Address())

	return &address.Registration{
		Address:             record.Address(),
		AuthenticationToken: token,
	}, nil
}

// Remove deletes an address after the store has verified the bearer token.
// The atomic check-and-delete lives entirely in the store; the service adds
// no further authorization logic.
func (s *Service) Remove(ctx context.Context, domain, username, token string) error {
	if err := s.store.Remove(ctx, domain, username, token); err != nil {
		return err
	}

	s.metrics.IncrementRemoved()
	s.logger.InfoContext(ctx, "removed payment address", "address", username+"@"+domain)
	return nil
}

func fetchOutcome(err error) string {
	if errors.Is(err, lnurl.ErrWrongManifestKind) {
		return "wrong_kind"
	}
	return "transport_error"
}
