// Package handler is the thin JSON transport over the address service. It
// delegates to the service without embedding business logic so transport
// concerns stay isolated.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lnaddrd/internal/address"
	"lnaddrd/internal/address/service"
	"lnaddrd/internal/lnurl"
	"lnaddrd/pkg/platform/sentinel"
	"lnaddrd/pkg/requestcontext"
)

// Service defines the directory operations the handler exposes.
type Service interface {
	ListDomains() []string
	GetDestination(ctx context.Context, domain, username string) (address.Destination, error)
	GetManifest(ctx context.Context, domain, username string) (*lnurl.PayResponse, error)
	Register(ctx context.Context, domain, username, destination string) (*address.Registration, error)
	Remove(ctx context.Context, domain, username, token string) error
}

// Handler handles the payment-address JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new address Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the address routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains", h.handleListDomains)
	r.Get("/lnaddress/{domain}/{username}", h.handleGetDestination)
	r.Post("/lnaddress/register", h.handleRegister)
	r.Delete("/lnaddress/remove", h.handleRemove)
	r.Get("/.well-known/lnurlp/{username}", h.handleManifest)
}

func (h *Handler) handleListDomains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListDomains())
}

func (h *Handler) handleGetDestination(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")
	username := chi.URLParam(r, "username")

	destination, err := h.service.GetDestination(ctx, domain, username)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, DestinationResponse{
		Destination: destination.String(),
		URL:         destination.URL(),
	})
}

// handleManifest serves the well-known LNURL-pay endpoint. The domain is the
// one the wallet used to reach us, taken from the request Host.
func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := hostWithoutPort(r.Host)
	username := chi.URLParam(r, "username")

	manifest, err := h.service.GetManifest(ctx, domain, username)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, manifest)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	registration, err := h.service.Register(ctx, req.Domain, req.Username, req.Destination)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, registration)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := h.service.Remove(ctx, req.Domain, req.Username, req.AuthenticationToken); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError translates domain errors into HTTP responses. Bearer tokens must
// never be echoed here, and storage internals are not leaked to clients.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("payment address not found"))

	case errors.Is(err, sentinel.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("payment address already registered"))

	case errors.Is(err, sentinel.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid authentication token"))

	case errors.Is(err, address.ErrInvalidDestination),
		errors.Is(err, service.ErrUnsupportedDomain),
		errors.Is(err, service.ErrInvalidUsername):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))

	case errors.Is(err, lnurl.ErrWrongManifestKind):
		writeJSON(w, http.StatusBadGateway, errorBody("destination is not an LNURL-pay endpoint"))

	case errors.Is(err, lnurl.ErrTransport):
		writeJSON(w, http.StatusBadGateway, errorBody("destination endpoint unreachable"))

	default:
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func hostWithoutPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(host, ":")
}
