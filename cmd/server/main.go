// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lnaddrd/internal/address/handler"
	"lnaddrd/internal/address/service"
	"lnaddrd/internal/address/store"
	"lnaddrd/internal/lnurl"
	"lnaddrd/internal/platform/config"
	"lnaddrd/internal/platform/httpserver"
	"lnaddrd/internal/platform/logger"
	"lnaddrd/internal/platform/metrics"
	"lnaddrd/internal/platform/postgres"
	httptransport "lnaddrd/internal/transport/http"
	"lnaddrd/internal/ui"
)

func main() {
	log := logger.New()

	if err := run(log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewPostgres(db)
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	svc, err := service.New(st, lnurl.NewClient(cfg.ManifestTimeout), cfg.Domains, log, metrics.New())
	if err != nil {
		return err
	}

	pages, err := ui.New(svc, cfg.Warning, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log, db,
		handler.New(svc, log),
		pages,
	)
	srv := httpserver.New(cfg.Bind, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting lnaddrd", "bind", cfg.Bind, "domains", cfg.Domains)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
