// Package server builds and runs the *http.Server of each binary: route
// tables, the middleware chain, timeouts and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/aanand-mishra/university-api/internal/config"
	"github.com/aanand-mishra/university-api/internal/http/middleware"
)

// New configures, but does not start, the server.
func New(cfg config.HTTPServer, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.Addr, // e.g. "localhost:8082"
		Handler: handler,

		// Production hardening — timeouts prevent slow-client attacks.
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Wrap applies the middleware every service shares. The request id is
// assigned first so the access log and the panic log both carry it.
func Wrap(h http.Handler, log *slog.Logger) http.Handler {
	return middleware.Chain(h,
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Recover(log),
	)
}

// Run serves on srv.Addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests cfg.ShutdownTimeout to finish.
func Run(ctx context.Context, srv *http.Server, cfg config.HTTPServer, log *slog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server.Run: listen: %w", err)
	}
	return Serve(ctx, srv, ln, cfg, log)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, cfg config.HTTPServer, log *slog.Logger) error {
	// Serve blocks forever (it loops accepting connections), so it runs in
	// its own goroutine while this one waits for ctx.
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", ln.Addr().String()))

		// Serve returns http.ErrServerClosed when Shutdown() is called.
		// That's expected — we don't report it as an error.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server.Serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, stopping server...")

	// Shutdown stops accepting connections, then waits for active requests
	// up to the deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Serve: shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
