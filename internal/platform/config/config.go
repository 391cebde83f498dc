package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the directory service.
type Server struct {
	// Domains is the ordered list of domains this instance is authoritative
	// for. Registration under any other domain is rejected.
	Domains []string

	// Bind is the address the HTTP server listens on.
	Bind string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// Warning is an optional banner shown on the registration form.
	Warning string

	// ManifestTimeout bounds a single outbound LNURL manifest fetch so a slow
	// remote cannot pin a request slot indefinitely.
	ManifestTimeout time.Duration
}

// FromEnv builds a Server config from LNADDRD_* environment variables so main
// stays lean.
func FromEnv() (Server, error) {
	domains := splitDomains(os.Getenv("LNADDRD_DOMAINS"))
	if len(domains) == 0 {
		return Server{}, fmt.Errorf("LNADDRD_DOMAINS is required (comma-separated list of served domains)")
	}

	bind := os.Getenv("LNADDRD_BIND")
	if bind == "" {
		bind = "127.0.0.1:8080"
	}

	databaseURL := os.Getenv("LNADDRD_DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "postgres://localhost:5432/lnaddrd"
	}

	manifestTimeout := 10 * time.Second
	if raw := os.Getenv("LNADDRD_MANIFEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("invalid LNADDRD_MANIFEST_TIMEOUT %q: %w", raw, err)
		}
		manifestTimeout = d
	}

	return Server{
		Domains:         domains,
		Bind:            bind,
		DatabaseURL:     databaseURL,
		Warning:         os.Getenv("LNADDRD_WARNING"),
		ManifestTimeout: manifestTimeout,
	}, nil
}

func splitDomains(raw string) []string {
	var domains []string
	for _, part := range strings.Split(raw, ",") {
		if d := strings.TrimSpace(part); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}
