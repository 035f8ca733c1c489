package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// MonitorInterval is how often the sentinel evaluates every watched wallet.
	MonitorInterval time.Duration

	// WatchlistPath is the path to the JSON watchlist of wallet positions
	// consumed by the file-backed position provider.
	WatchlistPath string

	// MetricsAddr is the listen address for the Prometheus metrics endpoint.
	// Empty disables the endpoint.
	MetricsAddr string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. DB settings are read separately by main so the state
// package stays free of env concerns.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	intervalSecs, err := getEnvAsInt("MONITOR_INTERVAL_SECONDS", 30)
	if err != nil {
		return err
	}
	if intervalSecs <= 0 {
		return errors.New("MONITOR_INTERVAL_SECONDS must be positive")
	}
	MonitorInterval = time.Duration(intervalSecs) * time.Second

	WatchlistPath, err = getEnv("WATCHLIST_PATH")
	if err != nil {
		return err
	}

	MetricsAddr = os.Getenv("METRICS_ADDR")

	log.Debug().
		Dur("MonitorInterval", MonitorInterval).
		Str("WatchlistPath", WatchlistPath).
		Str("MetricsAddr", MetricsAddr).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int, falling back to
// the default when unset. Returns error when set but invalid.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}
