// /internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, falling back to system environment variables")
	}
}

// Get returns a raw environment variable.
func Get(key string) string {
	return os.Getenv(key)
}

// Config holds the process configuration.
type Config struct {
	DiscordToken      string
	StoragePath       string
	IdleCheckInterval time.Duration
	MetricsAddr       string
	Silent            bool
	Debug             bool
}

// New reads the configuration from the environment and validates it.
func New() (*Config, error) {
	cfg := &Config{
		DiscordToken: Get("DISCORD_TOKEN"),
		StoragePath:  Get("STORAGE_PATH"),
		MetricsAddr:  Get("METRICS_ADDR"),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "datastore.json"
	}

	cfg.IdleCheckInterval = 300 * time.Second
	if raw := Get("IDLE_CHECK_INTERVAL"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid IDLE_CHECK_INTERVAL %q: expected positive seconds", raw)
		}
		cfg.IdleCheckInterval = time.Duration(secs) * time.Second
	}

	cfg.Silent, _ = strconv.ParseBool(Get("SILENT"))
	cfg.Debug, _ = strconv.ParseBool(Get("DEBUG"))

	return cfg, nil
}
