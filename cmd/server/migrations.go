package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
)

// handleMigrations runs a migration command against db. Every log line of
// the operation carries the same correlation ID.
func handleMigrations(ctx context.Context, db *sqlx.DB, command string, logger *slog.Logger) error {
	migrationLogger := logger.With(
		"correlation_id", uuid.NewString(),
		"driver", db.DriverName(),
	)

	switch command {
	case sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateStatus, sqlstore.MigrateVersion:
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	migrationLogger.Info("Starting migration operation", "command", command)
	if err := sqlstore.Migrate(ctx, db, command, migrationLogger); err != nil {
		migrationLogger.Error("Migration failed", "command", command, "error", err)
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	migrationLogger.Info("Migration operation completed", "command", command)
	return nil
}
