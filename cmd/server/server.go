package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// startHTTPServer serves router until ctx is canceled, then shuts down
// gracefully within the configured timeout. Expired sessions are cleaned up
// in the background while the server runs.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(app.config.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app.serve(ctx, server, func() error { return server.ListenAndServe() })
}

// serve runs listen alongside the session cleanup loop and shuts server down
// when ctx is canceled or listen fails.
func (app *application) serve(ctx context.Context, server *http.Server, listen func() error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("Starting server", "addr", server.Addr)
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		app.runSessionCleanup(gctx, app.config.Session.CleanupInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.cleanup()
	if err != nil {
		app.logger.Error("Server stopped with error", "error", err)
		return err
	}

	app.logger.Info("Server shutdown completed")
	return nil
}

// runSessionCleanup deletes expired sessions every interval until ctx is
// canceled. A non-positive interval disables cleanup.
func (app *application) runSessionCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sessionService.CleanupExpired(ctx)
			if err != nil {
				app.logger.Error("Session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info("Expired sessions cleaned up", "count", n)
			}
		}
	}
}
