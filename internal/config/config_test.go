package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `version: 1
tracker:
  base_url: https://jira.example.com/issues/
  ready_selector: ".issue-table-wrapper"
  timeout_seconds: 10
  headless: true
filters:
  - name: UNASSIGNED
    query: assignee is EMPTY
  - name: IN_PROGRESS
    query: status = "In Progress"
  - name: SIN_CERRAR
    query: resolution = Unresolved
email:
  to: [ops@example.com, lead@example.com, ops@example.com]
  cc: [boss@example.com, ops@example.com, boss@example.com]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("filters keep declaration order", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		want := []string{"UNASSIGNED", "IN_PROGRESS", "SIN_CERRAR"}
		if len(cfg.Filters) != len(want) {
			t.Fatalf("got %d filters, want %d", len(cfg.Filters), len(want))
		}
		for i, name := range want {
			if cfg.Filters[i].Name != name {
				t.Errorf("filter %d: got %q, want %q", i, cfg.Filters[i].Name, name)
			}
		}
	})

	t.Run("recipients deduplicated in first-occurrence order", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		wantTo := []string{"ops@example.com", "lead@example.com"}
		if len(cfg.Email.To) != len(wantTo) {
			t.Fatalf("got %d TO recipients, want %d: %v", len(cfg.Email.To), len(wantTo), cfg.Email.To)
		}
		for i, addr := range wantTo {
			if cfg.Email.To[i] != addr {
				t.Errorf("to[%d]: got %q, want %q", i, cfg.Email.To[i], addr)
			}
		}
		wantCC := []string{"boss@example.com", "ops@example.com"}
		if len(cfg.Email.CC) != len(wantCC) {
			t.Fatalf("got %d CC recipients, want %d: %v", len(cfg.Email.CC), len(wantCC), cfg.Email.CC)
		}
	})

	t.Run("missing file is ErrNotFound", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("env overrides tracker scalars", func(t *testing.T) {
		t.Setenv(EnvTimeout, "25")
		t.Setenv(EnvHeadless, "false")
		cfg, err := Load(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Tracker.TimeoutSeconds != 25 {
			t.Errorf("timeout: got %d, want 25", cfg.Tracker.TimeoutSeconds)
		}
		if cfg.Tracker.Headless {
			t.Error("headless: env override not applied")
		}
	})

	t.Run("malformed env timeout is ErrInvalid", func(t *testing.T) {
		t.Setenv(EnvTimeout, "notanumber")
		_, err := Load(writeConfig(t, validYAML))
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("got %v, want ErrInvalid", err)
		}
	})

	t.Run("malformed env headless is ErrInvalid", func(t *testing.T) {
		t.Setenv(EnvHeadless, "yes")
		_, err := Load(writeConfig(t, validYAML))
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("got %v, want ErrInvalid", err)
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Version: CurrentVersion,
			Tracker: TrackerConfig{
				BaseURL:        "https://jira.example.com/issues/",
				ReadySelector:  ".issue-table-wrapper",
				TimeoutSeconds: 10,
			},
			Filters: []FilterConfig{{Name: "OPEN", Query: "resolution = Unresolved"}},
			Email:   EmailConfig{To: []string{"ops@example.com"}},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base_url", func(c *Config) { c.Tracker.BaseURL = "" }},
		{"relative base_url", func(c *Config) { c.Tracker.BaseURL = "/issues" }},
		{"missing ready_selector", func(c *Config) { c.Tracker.ReadySelector = "" }},
		{"zero timeout", func(c *Config) { c.Tracker.TimeoutSeconds = 0 }},
		{"no filters", func(c *Config) { c.Filters = nil }},
		{"unnamed filter", func(c *Config) { c.Filters[0].Name = "" }},
		{"empty query", func(c *Config) { c.Filters[0].Query = "" }},
		{"duplicate filter names", func(c *Config) {
			c.Filters = append(c.Filters, FilterConfig{Name: "OPEN", Query: "x"})
		}},
		{"no TO recipients", func(c *Config) { c.Email.To = nil }},
		{"malformed address", func(c *Config) { c.Email.To = []string{"not-an-address"} }},
		{"display-name address form", func(c *Config) {
			c.Email.To = []string{"Ops Team <ops@example.com>"}
		}},
		{"extra field missing class", func(c *Config) {
			c.Tracker.ExtraFields = []ExtraField{{Name: "Classification"}}
		}},
		{"wrong version", func(c *Config) { c.Version = 99 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := NewDefault()
	if cfg.Tracker.ReadySelector != DefaultReadySelector {
		t.Errorf("ready_selector default: got %q", cfg.Tracker.ReadySelector)
	}
	if cfg.Tracker.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("timeout default: got %d", cfg.Tracker.TimeoutSeconds)
	}
	if !cfg.Tracker.Headless {
		t.Error("headless should default to true")
	}
	if got := cfg.MaxColumnWidth(); got != DefaultMaxColumnWidth {
		t.Errorf("max column width: got %d", got)
	}
	if cfg.BodyTemplate() != DefaultBodyTemplate {
		t.Error("body template should fall back to default")
	}
	if cfg.OutputDir() == "" {
		t.Error("output dir should fall back to the temp directory")
	}
}
