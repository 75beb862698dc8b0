// Package config reads planner settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	DBPath      string
	APIURL      string
	APIToken    string
	APITimeout  time.Duration
	LogUseCases bool
	LogAPICalls bool
}

// Remote reports whether edits go to the planning API instead of the
// local store.
func (c Config) Remote() bool {
	return c.APIURL != ""
}

// Default returns the settings used when no variables are set.
func Default() Config {
	return Config{
		DBPath:     defaultDBPath(),
		APITimeout: 10 * time.Second,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or malformed values.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("PLANNER_DB"); v != "" {
		cfg.DBPath = v
	}
	cfg.APIURL = os.Getenv("PLANNER_API_URL")
	cfg.APIToken = os.Getenv("PLANNER_API_TOKEN")
	if v := os.Getenv("PLANNER_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APITimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("PLANNER_LOG_USECASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PLANNER_LOG_API_CALLS"); v != "" {
		cfg.LogAPICalls, _ = strconv.ParseBool(v)
	}
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "planner.db"
	}
	return filepath.Join(home, ".planner", "planner.db")
}
