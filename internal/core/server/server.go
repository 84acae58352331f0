// Package server composes the public router and the optional ops listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mohammed-shakir/busdata-gateway/internal/core/config"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/health"
	middleware "github.com/mohammed-shakir/busdata-gateway/internal/core/middleware"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/router"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/static"
)

// NewRouter builds the public routes. /busdata is registered before the
// catch-all so the SPA fallback never shadows it.
func NewRouter(cfg config.Config, logger *slog.Logger, f router.BusDataFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	// one trailing slash is the same route; deeper paths fall to the SPA
	busdata := router.HandleBusData(logger, f)
	for _, p := range []string{router.BusDataRoute, router.BusDataRoute + "/"} {
		r.Get(p, busdata)
		r.Head(p, busdata)
	}

	spa := static.NewSPA(logger, cfg.Static.PublicDir, cfg.Static.IndexFile)
	r.Method(http.MethodGet, "/*", spa)
	r.Method(http.MethodHead, "/*", spa)
	return r
}

// NewOpsRouter serves probes and metrics away from the public routes.
func NewOpsRouter(metricsPath string, metrics http.Handler, checks ...health.Check) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(checks...))
	if metrics != nil {
		r.Method(http.MethodGet, metricsPath, metrics)
	}
	return r
}

// Run serves the public handler, and ops when non-nil, until ctx is done.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, public, ops http.Handler) error {
	servers := []*http.Server{newHTTPServer(cfg.Addr, public)}
	if ops != nil {
		servers = append(servers, newHTTPServer(cfg.Metrics.Addr, ops))
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("http listen", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "addr", srv.Addr, "err", err)
		}
	}
	return runErr
}

// no WriteTimeout: the upstream call itself is unbounded unless UPSTREAM_TIMEOUT is set
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
