// Package httptransport assembles the HTTP surface: middleware chain, JSON
// API, well-known LNURL endpoint, HTML pages and operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lnaddrd/internal/platform/middleware"
)

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouteRegistrar is implemented by handlers that attach their routes to the
// router.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain and mounts all handlers. Operational
// endpoints sit outside the request timeout so a slow upstream cannot starve
// health checks.
func NewRouter(logger *slog.Logger, db Pinger, handlers ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(db))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}

func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
