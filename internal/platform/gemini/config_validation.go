package gemini

import (
	"fmt"
	"strings"

	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/generation"
)

// validateConfig checks the settings the strategy cannot run without.
func validateConfig(cfg config.GeminiConfig) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("%w: gemini model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("%w: gemini temperature must be between 0 and 2, got %v",
			generation.ErrInvalidConfig, cfg.Temperature)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("%w: gemini timeout cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}
