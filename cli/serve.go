package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/richinex/slidesmith/server"
)

// Serve runs the HTTP/WebSocket server until ctx is cancelled, then shuts
// down gracefully.
func Serve(ctx context.Context, app *App) error {
	log := app.Logger
	settings := app.Settings

	srv := server.New(app.Generator, app.Limiter, log.With("component", "server"), server.Options{
		FrontendURL: settings.Server.FrontendURL,
	})

	httpServer := &http.Server{
		Addr:              settings.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", httpServer.Addr, "frontend_url", settings.Server.FrontendURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by http.Server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("sessions did not drain", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
