package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/occlusion/pkg/adapters/http"
	"github.com/aretw0/occlusion/pkg/observability"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may take once the server stops.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Addr  string
	Store StoreOptions
}

// NewHandler builds the API handler with its own metrics registry.
func NewHandler(sessions *session.Manager, logger *slog.Logger) (http.Handler, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(promReg)
	if err != nil {
		return nil, err
	}

	plugins := func(clk ports.Clock) *registry.Registry {
		return newRegistry(clk, logger, metrics.Hooks())
	}
	return httpadapter.NewHandler(plugins, sessions,
		httpadapter.WithGatherer(promReg),
		httpadapter.WithLogger(logger),
	), nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions, logger *slog.Logger) error {
	backend, err := OpenStore(ctx, opts.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	handler, err := NewHandler(backend.Sessions(logger), logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	return serveListener(ctx, ln, handler, logger)
}

func serveListener(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		return nil
	})
	return g.Wait()
}
