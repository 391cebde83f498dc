// Package ui renders the server-side HTML pages for registering and
// inspecting lightning addresses. It sits beside the JSON API and talks to
// the same address service.
package ui

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"lnaddrd/internal/address"
	"lnaddrd/internal/address/service"
	"lnaddrd/internal/lnurl"
	"lnaddrd/pkg/platform/sentinel"
	"lnaddrd/pkg/requestcontext"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Service defines the directory operations the pages are built from.
type Service interface {
	ListDomains() []string
	GetDestination(ctx context.Context, domain, username string) (address.Destination, error)
	GetManifest(ctx context.Context, domain, username string) (*lnurl.PayResponse, error)
	Register(ctx context.Context, domain, username, destination string) (*address.Registration, error)
}

// Handler serves the HTML pages.
type Handler struct {
	logger    *slog.Logger
	service   Service
	warning   string
	templates *template.Template
}

// New creates a UI Handler. The warning, when non-empty, is shown as a banner
// on the registration form.
func New(service Service, warning string, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		logger:    logger,
		service:   service,
		warning:   warning,
		templates: tmpl,
	}, nil
}

// Register registers the UI routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleRegisterForm)
	r.Post("/ui/register", h.handleRegisterSubmit)
	r.Get("/ui/lnaddress/{domain}/{username}", h.handleDetails)
}

type registerPage struct {
	Domains []string
	Warning string
}

func (h *Handler) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(r.Context(), w, http.StatusOK, "register", registerPage{
		Domains: h.service.ListDomains(),
		Warning: h.warning,
	})
}

type registeredPage struct {
	Address             string
	Domain              string
	Username            string
	AuthenticationToken string
}

func (h *Handler) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.renderError(ctx, w, http.StatusBadRequest, "invalid form submission")
		return
	}
	domain := r.PostFormValue("domain")
	username := r.PostFormValue("username")
	destination := r.PostFormValue("destination")

	registration, err := h.service.Register(ctx, domain, username, destination)
	if err != nil {
		h.renderError(ctx, w, errorStatus(err), errorMessage(err))
		return
	}

	// The token is only available here, so the confirmation page is rendered
	// directly instead of redirecting to the details page.
	h.render(ctx, w, http.StatusOK, "registered", registeredPage{
		Address:             registration.Address,
		Domain:              domain,
		Username:            username,
		AuthenticationToken: registration.AuthenticationToken,
	})
}

type detailsPage struct {
	Address     string
	QRCode      template.URL
	Destination string
	URL         string
	Manifest    string
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")
	username := chi.URLParam(r, "username")

	var (
		destination address.Destination
		manifest    *lnurl.PayResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		destination, err = h.service.GetDestination(gctx, domain, username)
		return err
	})
	g.Go(func() error {
		var err error
		manifest, err = h.service.GetManifest(gctx, domain, username)
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderError(ctx, w, errorStatus(err), errorMessage(err))
		return
	}

	lnaddr := fmt.Sprintf("%s@%s", username, domain)
	qr, err := qrDataURI(lnaddr)
	if err != nil {
		h.renderError(ctx, w, http.StatusInternalServerError, "internal error")
		return
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		h.renderError(ctx, w, http.StatusInternalServerError, "internal error")
		return
	}

	h.render(ctx, w, http.StatusOK, "details", detailsPage{
		Address:     lnaddr,
		QRCode:      template.URL(qr),
		Destination: destination.String(),
		URL:         destination.URL(),
		Manifest:    string(manifestJSON),
	})
}

type errorPage struct {
	Message string
}

func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	h.render(ctx, w, status, "error", errorPage{Message: message})
}

func (h *Handler) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(ctx, "render page",
			"request_id", requestcontext.RequestID(ctx),
			"template", name,
			"error", err.Error(),
		)
	}
}

// qrDataURI renders content as a QR code PNG wrapped in a data URI, so pages
// stay self-contained without a separate image endpoint.
func qrDataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// errorStatus picks the page status for a service error. Tokens and storage
// internals never reach the page.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, address.ErrInvalidDestination),
		errors.Is(err, service.ErrUnsupportedDomain),
		errors.Is(err, service.ErrInvalidUsername):
		return http.StatusBadRequest
	case errors.Is(err, lnurl.ErrWrongManifestKind), errors.Is(err, lnurl.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return "payment address not found"
	case errors.Is(err, sentinel.ErrConflict):
		return "payment address already registered"
	case errors.Is(err, address.ErrInvalidDestination),
		errors.Is(err, service.ErrUnsupportedDomain),
		errors.Is(err, service.ErrInvalidUsername):
		return err.Error()
	case errors.Is(err, lnurl.ErrWrongManifestKind):
		return "destination is not an LNURL-pay endpoint"
	case errors.Is(err, lnurl.ErrTransport):
		return "destination endpoint unreachable"
	default:
		return "internal error"
	}
}
