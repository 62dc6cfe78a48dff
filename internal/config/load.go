package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYBUDDY"

// configFileEnv names an explicit config file, overriding the search path.
const configFileEnv = EnvPrefix + "_CONFIG_FILE"

const inferenceBaseURL = "https://api-inference.huggingface.co/models/"

// defaultEndpoints is the cascade order used when no endpoints are configured.
var defaultEndpoints = []map[string]any{
	{"name": "summarize", "kind": "summarize", "url": inferenceBaseURL + "facebook/bart-large-cnn"},
	{"name": "extractive", "kind": "extractive", "url": inferenceBaseURL + "distilbert-base-cased-distilled-squad"},
	{"name": "instruct", "kind": "instruct", "url": inferenceBaseURL + "google/flan-t5-small"},
	{"name": "complete", "kind": "complete", "url": inferenceBaseURL + "gpt2"},
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is read first when present; it never
// overrides variables already set in the environment.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.rate_limit_per_minute", 60)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "sqlite://flashcards.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("session.lifetime", 30*24*time.Hour)
	v.SetDefault("session.cleanup_interval", time.Hour)

	v.SetDefault("generation.endpoints", defaultEndpoints)
	v.SetDefault("generation.request_timeout", 60*time.Second)
	v.SetDefault("generation.default_card_count", 5)
	v.SetDefault("generation.max_card_count", 20)
	v.SetDefault("generation.min_content_length", 50)
	v.SetDefault("generation.max_content_length", 2000)
	v.SetDefault("generation.gemini.model", "gemini-2.0-flash")
	v.SetDefault("generation.gemini.temperature", 0.7)
	v.SetDefault("generation.gemini.timeout", 30*time.Second)

	v.SetDefault("cache.ttl", 24*time.Hour)
}

// bindEnv registers keys without defaults so AutomaticEnv can see them, and
// accepts the conventional unprefixed names for external credentials.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"auth.session_token_secret": {EnvPrefix + "_AUTH_SESSION_TOKEN_SECRET"},
		"database.url":              {EnvPrefix + "_DATABASE_URL", "DATABASE_URL"},
		"generation.api_key":        {EnvPrefix + "_GENERATION_API_KEY", "HUGGINGFACE_API_KEY"},
		"generation.gemini.api_key": {EnvPrefix + "_GENERATION_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"cache.redis_url":           {EnvPrefix + "_CACHE_REDIS_URL", "REDIS_URL"},
	}
	for key, names := range bindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
