package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/studybuddy-api/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	slog.Debug("Generation configuration",
		"endpoints", len(cfg.Generation.Endpoints),
		"api_key_present", cfg.Generation.APIKey != "",
		"gemini_enabled", cfg.Generation.Gemini.Enabled(),
		"cache_enabled", cfg.Cache.RedisURL != "")

	return cfg, nil
}
