package httptransport_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "lnaddrd/internal/transport/http"
	"lnaddrd/pkg/testutil"
)

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type pingRegistrar struct{}

func (pingRegistrar) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		router := httptransport.NewRouter(slog.New(slog.DiscardHandler), okPinger{})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unreachable store", func(t *testing.T) {
		router := httptransport.NewRouter(slog.New(slog.DiscardHandler), failingPinger{})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := httptransport.NewRouter(slog.New(slog.DiscardHandler), okPinger{})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMountedHandlersGetRequestID(t *testing.T) {
	router := httptransport.NewRouter(slog.New(slog.DiscardHandler), okPinger{}, pingRegistrar{})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
