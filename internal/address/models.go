// Package address defines the payment-address domain model: the destination
// union, the persisted record, and the one-time registration result.
package address

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lnaddrd/internal/lnurl"
)

// ErrInvalidDestination is returned when a destination text is neither a
// decodable LNURL nor a user@domain lightning address.
var ErrInvalidDestination = errors.New("invalid destination: neither an LNURL nor a lightning address")

// Destination points at the place a pay manifest can be fetched from. It is a
// closed union: exactly LNURLDestination or AliasDestination.
//
// String returns the canonical round-trip text form; URL returns the HTTPS
// endpoint to query for a manifest. Both are pure.
type Destination interface {
	fmt.Stringer
	URL() string

	sealed()
}

// LNURLDestination is a self-contained, bech32-encoded destination. The
// encoded text embeds the endpoint URL directly.
type LNURLDestination struct {
	// Encoded is the bech32 text exactly as registered.
	Encoded string

	// Endpoint is the URL carried inside Encoded.
	Endpoint string
}

func (d LNURLDestination) String() string { return d.Encoded }

func (d LNURLDestination) URL() string { return d.Endpoint }

func (LNURLDestination) sealed() {}

// AliasDestination is an indirect destination expressed as user@domain and
// resolved by the well-known lnurlp convention.
type AliasDestination struct {
	User   string
	Domain string
}

func (d AliasDestination) String() string { return d.User + "@" + d.Domain }

func (d AliasDestination) URL() string {
	return fmt.Sprintf("https://%s/.well-known/lnurlp/%s", d.Domain, d.User)
}

func (AliasDestination) sealed() {}

// ParseDestination parses a destination text. LNURL decode is attempted
// first; on failure the text must split on exactly one @ into non-empty
// user and domain parts.
func ParseDestination(text string) (Destination, error) {
	if endpoint, err := lnurl.Decode(text); err == nil {
		return LNURLDestination{Encoded: text, Endpoint: endpoint}, nil
	}

	parts := strings.Split(text, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidDestination
	}

	return AliasDestination{User: parts[0], Domain: parts[1]}, nil
}

// PaymentAddress is the persisted record for one username@domain. The bearer
// token is stored only as a hash; the plaintext exists solely in the
// Registration handed out when the record is created.
type PaymentAddress struct {
	Username    string
	Domain      string
	Destination Destination

	// TokenHash is the bcrypt hash of the removal bearer token.
	TokenHash []byte

	// CreatedAt and UpdatedAt are set by the store, never by callers.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address composes the record's lightning address text.
func (a *PaymentAddress) Address() string {
	return a.Username + "@" + a.Domain
}

// Registration is handed out exactly once at registration time. The token is
// not recoverable afterwards; losing it makes the record permanently
// immutable to its owner.
type Registration struct {
	Address             string `json:"lnaddress"`
	AuthenticationToken string `json:"authentication_token"`
}
