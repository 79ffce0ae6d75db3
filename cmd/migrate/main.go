package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"housy-backend/internal/shared/config"
	"housy-backend/internal/shared/storage/db"
	"housy-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	defer telemetry.Sync()

	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("failed to connect database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if err := db.MigrationStatus(ctx, sqlDB); err != nil {
		telemetry.Warn("migration status unavailable", map[string]any{"error": err.Error()})
		return
	}
	telemetry.Info("migrations applied", nil)
}
