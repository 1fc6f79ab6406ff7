package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-backend/internal/bootstrap"
	"vault-backend/internal/shared/config"
	"vault-backend/internal/shared/server"
	"vault-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("startup failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server listening", map[string]any{"port": cfg.Port, "env": cfg.Env})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		telemetry.Info("shutdown signal received", nil)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("server stopped", nil)
}
