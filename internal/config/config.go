package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds process configuration, populated from the environment.
// A local .env file is honored when present.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	RedisURL string `envconfig:"REDIS_URL" default:"localhost:6379"`
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`

	// Client-side settings: where the playback clients find the
	// content/persistence service.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	UserID     string `envconfig:"PLAYER_USER_ID" default:"local-player"`

	// StoryFile switches the console to offline mode: the story is
	// read from this JSON file and progress stays in process.
	StoryFile string `envconfig:"STORY_FILE"`

	// CacheURL points the console's preload/settings cache at a Redis
	// instance. Empty keeps the cache in process memory.
	CacheURL string `envconfig:"CACHE_URL"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
