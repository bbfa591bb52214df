package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no config file found (run 'jirareport config init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the full report-run configuration.
type Config struct {
	Version int            `yaml:"version"`
	Tracker TrackerConfig  `yaml:"tracker"`
	Filters []FilterConfig `yaml:"filters"`
	Email   EmailConfig    `yaml:"email"`
	Report  ReportConfig   `yaml:"report"`

	// path is the absolute path to the loaded config file (not serialized).
	path string `yaml:"-"`
}

// TrackerConfig holds the issue-tracker connection settings.
type TrackerConfig struct {
	BaseURL        string       `yaml:"base_url"`
	ReadySelector  string       `yaml:"ready_selector"`
	TimeoutSeconds int          `yaml:"timeout_seconds"`
	Headless       bool         `yaml:"headless"`
	ExtraFields    []ExtraField `yaml:"extra_fields,omitempty"`
}

// ExtraField maps a custom tracker column onto a report column.
// CellClass is the td class name carrying the value in the issue table.
type ExtraField struct {
	Name      string `yaml:"name"`
	CellClass string `yaml:"cell_class"`
}

// FilterConfig is one named tracker query. Order in the config file is
// the order of extraction and of sheets in the report.
type FilterConfig struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// EmailConfig holds draft recipients and templating.
type EmailConfig struct {
	To            []string `yaml:"to"`
	CC            []string `yaml:"cc,omitempty"`
	SubjectPrefix string   `yaml:"subject_prefix"`
	BodyTemplate  string   `yaml:"body_template,omitempty"`
}

// ReportConfig holds workbook output settings.
type ReportConfig struct {
	OutputDir      string `yaml:"output_dir,omitempty"`
	MaxColumnWidth int    `yaml:"max_column_width,omitempty"`
	KeepFile       bool   `yaml:"keep_file,omitempty"`
}

// Path returns the absolute path of the loaded config file.
func (c *Config) Path() string {
	return c.path
}

// SetPath records where the config lives (used by Save).
func (c *Config) SetPath(path string) {
	c.path = path
}

// Timeout returns the navigation wait timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Tracker.TimeoutSeconds) * time.Second
}

// OutputDir returns the report output directory, defaulting to the
// system temp directory when unset.
func (c *Config) OutputDir() string {
	if c.Report.OutputDir == "" {
		return os.TempDir()
	}
	return c.Report.OutputDir
}

// MaxColumnWidth returns the column width cap for the workbook,
// falling back to DefaultMaxColumnWidth when unset.
func (c *Config) MaxColumnWidth() int {
	if c.Report.MaxColumnWidth <= 0 {
		return DefaultMaxColumnWidth
	}
	return c.Report.MaxColumnWidth
}

// BodyTemplate returns the HTML body template, falling back to the default.
func (c *Config) BodyTemplate() string {
	if c.Email.BodyTemplate == "" {
		return DefaultBodyTemplate
	}
	return c.Email.BodyTemplate
}

// NewDefault creates a Config with default values and no filters.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Tracker: TrackerConfig{
			ReadySelector:  DefaultReadySelector,
			TimeoutSeconds: DefaultTimeoutSeconds,
			Headless:       true,
		},
		Email: EmailConfig{
			SubjectPrefix: DefaultSubjectPrefix,
		},
		Report: ReportConfig{
			MaxColumnWidth: DefaultMaxColumnWidth,
		},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Tracker.BaseURL == "" {
		return fmt.Errorf("%w: tracker.base_url is required", ErrInvalid)
	}
	u, err := url.Parse(c.Tracker.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: tracker.base_url %q is not an absolute URL", ErrInvalid, c.Tracker.BaseURL)
	}
	if c.Tracker.ReadySelector == "" {
		return fmt.Errorf("%w: tracker.ready_selector is required", ErrInvalid)
	}
	if c.Tracker.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: tracker.timeout_seconds must be > 0", ErrInvalid)
	}
	for i, ef := range c.Tracker.ExtraFields {
		if ef.Name == "" || ef.CellClass == "" {
			return fmt.Errorf("%w: tracker.extra_fields[%d]: name and cell_class are required", ErrInvalid, i)
		}
	}
	if len(c.Filters) == 0 {
		return fmt.Errorf("%w: at least 1 filter is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Filters))
	for i, f := range c.Filters {
		if f.Name == "" {
			return fmt.Errorf("%w: filters[%d].name is required", ErrInvalid, i)
		}
		if f.Query == "" {
			return fmt.Errorf("%w: filters[%d].query is required", ErrInvalid, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate filter name %q", ErrInvalid, f.Name)
		}
		seen[f.Name] = true
	}
	if len(c.Email.To) == 0 {
		return fmt.Errorf("%w: email.to requires at least 1 recipient", ErrInvalid)
	}
	for _, addr := range append(append([]string{}, c.Email.To...), c.Email.CC...) {
		if err := validateAddress(addr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Save writes the config to its path.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.path, data, fileMode)
}

// Load reads, normalizes, and validates a config file. When path is empty
// the default locations are searched (working directory, then
// ~/.config/jirareport). A .env file in the working directory and
// JIRAREPORT_* environment variables override tracker scalars.
func Load(path string) (*Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.path = resolved

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.Email.To = dedupe(cfg.Email.To)
	cfg.Email.CC = dedupe(cfg.Email.CC)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolvePath returns the absolute path of the config file to load.
func resolvePath(path string) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolving path: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	candidate := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/jirareport", ConfigFileName), nil
}

// dedupe removes duplicate entries, keeping the first occurrence in order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// validateAddress checks that addr parses as a bare RFC 5322 address.
func validateAddress(addr string) error {
	if addr == "" {
		return errors.New("empty email address")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid email address %q: %v", addr, err)
	}
	if parsed.Address != addr {
		return fmt.Errorf("invalid email address %q: use the bare address form", addr)
	}
	return nil
}
