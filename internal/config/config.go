package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Session    SessionConfig    `mapstructure:"session"    validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port"       validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level"  validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
	// RateLimitPerMinute is the per-client request budget. Zero disables limiting.
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"      validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// URL is a postgres:// URL or a sqlite:// path.
	URL             string        `mapstructure:"url"               validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains the settings for signed session tokens.
type AuthConfig struct {
	SessionTokenSecret string `mapstructure:"session_token_secret" validate:"required,min=32"`
}

// SessionConfig controls the lifetime of anonymous sessions.
type SessionConfig struct {
	Lifetime time.Duration `mapstructure:"lifetime"         validate:"gt=0"`
	// CleanupInterval is how often expired sessions are deleted. Zero disables cleanup.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gte=0"`
}

// GenerationConfig contains the flashcard generation settings.
type GenerationConfig struct {
	// APIKey is the shared inference API key. Without it (and without
	// per-endpoint keys) the inference endpoints are skipped.
	APIKey           string           `mapstructure:"api_key"`
	Endpoints        []EndpointConfig `mapstructure:"endpoints"          validate:"dive"`
	RequestTimeout   time.Duration    `mapstructure:"request_timeout"    validate:"gt=0"`
	DefaultCardCount int              `mapstructure:"default_card_count" validate:"gte=2,lte=20"`
	MaxCardCount     int              `mapstructure:"max_card_count"     validate:"gtefield=DefaultCardCount,lte=50"`
	MinContentLength int              `mapstructure:"min_content_length" validate:"gte=1"`
	MaxContentLength int              `mapstructure:"max_content_length" validate:"gtfield=MinContentLength"`
	Gemini           GeminiConfig     `mapstructure:"gemini"`
}

// EndpointConfig describes one inference endpoint of the generation cascade.
type EndpointConfig struct {
	Name    string        `mapstructure:"name"`
	Kind    string        `mapstructure:"kind"    validate:"required,oneof=summarize extractive instruct complete"`
	URL     string        `mapstructure:"url"     validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// GeminiConfig contains the Gemini strategy settings. The strategy is
// enabled only when APIKey is set.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"gte=0"`
}

// Enabled reports whether a Gemini key is configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// CacheConfig contains the generation result cache settings. The cache is
// enabled only when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"       validate:"gte=0"`
}
