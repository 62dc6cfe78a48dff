// Package main implements the entry point for the Study Buddy API server,
// which turns study notes into flashcard sets for anonymous sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command (up, down, status, version) and exit")
	skipMigrations := flag.Bool("skip-migrations", false,
		"Do not apply pending migrations on startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd, !*skipMigrations); err != nil {
		log.Printf("Study Buddy API server failed: %v", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, prepares the database and either executes a
// migration command or serves HTTP until ctx is canceled.
func run(ctx context.Context, migrateCmd string, autoMigrate bool) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, migrateCmd, logger)
	}

	if autoMigrate {
		if err := handleMigrations(ctx, db, sqlstore.MigrateUp, logger); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	slog.Info("Study Buddy API server starting", "port", cfg.Server.Port)
	return app.Run(ctx)
}
