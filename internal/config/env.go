package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names that override tracker settings after the
// config file is parsed. A .env file in the working directory is loaded
// first; real environment variables win over .env entries.
const (
	EnvBaseURL       = "JIRAREPORT_BASE_URL"
	EnvHeadless      = "JIRAREPORT_HEADLESS"
	EnvTimeout       = "JIRAREPORT_TIMEOUT"
	EnvReadySelector = "JIRAREPORT_READY_SELECTOR"
)

// applyEnvOverrides overlays JIRAREPORT_* variables onto cfg. A set but
// malformed value is a configuration error, never silently ignored.
func applyEnvOverrides(cfg *Config) error {
	// godotenv.Load never overrides variables already in the environment.
	_ = godotenv.Load()

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Tracker.BaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvReadySelector); v != "" {
		cfg.Tracker.ReadySelector = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not a boolean", ErrInvalid, EnvHeadless, v)
		}
		cfg.Tracker.Headless = b
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not an integer", ErrInvalid, EnvTimeout, v)
		}
		cfg.Tracker.TimeoutSeconds = n
	}
	return nil
}
