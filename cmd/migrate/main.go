package main

import (
	"context"
	"os"
	"time"

	"vault-backend/internal/shared/config"
	"vault-backend/internal/shared/storage/db"
	"vault-backend/internal/shared/telemetry"
)

// Applies pending schema migrations and exits. Useful for deploy hooks
// where migrations run before the API rolls out.
func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("DATABASE_URL is required", nil)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("connect database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrations applied", nil)
}
