package lnurl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrTransport covers everything that prevented obtaining a well-formed
	// manifest: connection failures, timeouts, non-2xx statuses, bodies that
	// don't parse, and protocol-level ERROR responses.
	ErrTransport = errors.New("lnurl transport failure")

	// ErrWrongManifestKind means the remote answered with a well-formed LNURL
	// response of a kind other than payRequest. The transport worked; the
	// endpoint just isn't a pay endpoint.
	ErrWrongManifestKind = errors.New("wrong manifest kind")
)

// Responses larger than this are not manifests.
const maxManifestBytes = 1 << 20

// Client fetches LNURL-pay manifests. One request per call, no caching, no
// retries; callers needing freshness re-invoke.
type Client struct {
	http *http.Client
}

// NewClient builds a manifest client whose requests are bounded by timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// FetchManifest performs a single GET against url and returns the pay
// manifest it describes. Cancelling ctx cancels the outbound request.
func (c *Client) FetchManifest(ctx context.Context, url string) (*PayResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrTransport, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var probe struct {
		Tag Tag `json:"tag"`
		errEnvelope
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: malformed manifest body: %v", ErrTransport, err)
	}

	if strings.EqualFold(probe.Status, "ERROR") {
		return nil, fmt.Errorf("%w: remote reported error: %s", ErrTransport, probe.Reason)
	}

	switch probe.Tag {
	case TagPayRequest:
		var manifest PayResponse
		if err := json.Unmarshal(body, &manifest); err != nil {
			return nil, fmt.Errorf("%w: malformed pay manifest: %v", ErrTransport, err)
		}
		if manifest.Callback == "" {
			return nil, fmt.Errorf("%w: pay manifest missing callback", ErrTransport)
		}
		return &manifest, nil

	case TagWithdrawRequest, TagChannelRequest:
		return nil, fmt.Errorf("%w: %s", ErrWrongManifestKind, probe.Tag)

	default:
		return nil, fmt.Errorf("%w: unknown manifest tag %q", ErrTransport, probe.Tag)
	}
}
