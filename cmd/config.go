package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raulmdev/jirareport/internal/clierr"
	"github.com/raulmdev/jirareport/internal/config"
	"github.com/raulmdev/jirareport/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify the run configuration",
	Long:  `View the full configuration, get a specific key, set a writable value, or create a starter config file.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"tracker.base_url": {
			get:      func(c *config.Config) any { return c.Tracker.BaseURL },
			set:      func(c *config.Config, v string) error { c.Tracker.BaseURL = v; return nil },
			writable: true,
		},
		"tracker.ready_selector": {
			get:      func(c *config.Config) any { return c.Tracker.ReadySelector },
			set:      func(c *config.Config, v string) error { c.Tracker.ReadySelector = v; return nil },
			writable: true,
		},
		"tracker.timeout_seconds": {
			get: func(c *config.Config) any { return c.Tracker.TimeoutSeconds },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.ConfigInvalid,
						"invalid tracker.timeout_seconds %q: must be an integer", v)
				}
				c.Tracker.TimeoutSeconds = n
				return nil // validation handles range check
			},
			writable: true,
		},
		"tracker.headless": {
			get: func(c *config.Config) any { return c.Tracker.Headless },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.ConfigInvalid,
						"invalid tracker.headless %q: must be a boolean", v)
				}
				c.Tracker.Headless = b
				return nil
			},
			writable: true,
		},
		"filters": {
			get: func(c *config.Config) any { return filterNames(c) },
		},
		"email.to": {
			get: func(c *config.Config) any { return c.Email.To },
		},
		"email.cc": {
			get: func(c *config.Config) any { return c.Email.CC },
		},
		"email.subject_prefix": {
			get:      func(c *config.Config) any { return c.Email.SubjectPrefix },
			set:      func(c *config.Config, v string) error { c.Email.SubjectPrefix = v; return nil },
			writable: true,
		},
		"report.output_dir": {
			get:      func(c *config.Config) any { return c.Report.OutputDir },
			set:      func(c *config.Config, v string) error { c.Report.OutputDir = v; return nil },
			writable: true,
		},
		"report.max_column_width": {
			get: func(c *config.Config) any { return c.MaxColumnWidth() },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.ConfigInvalid,
						"invalid report.max_column_width %q: must be an integer", v)
				}
				c.Report.MaxColumnWidth = n
				return nil
			},
			writable: true,
		},
		"report.keep_file": {
			get: func(c *config.Config) any { return c.Report.KeepFile },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.ConfigInvalid,
						"invalid report.keep_file %q: must be a boolean", v)
				}
				c.Report.KeepFile = b
				return nil
			},
			writable: true,
		},
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"tracker.base_url",
		"tracker.ready_selector",
		"tracker.timeout_seconds",
		"tracker.headless",
		"filters",
		"email.to",
		"email.cc",
		"email.subject_prefix",
		"report.output_dir",
		"report.max_column_width",
		"report.keep_file",
	}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.ConfigFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(abs); err == nil {
		return clierr.Newf(clierr.ConfigAlreadyExists, "config already exists at %s", abs).
			WithDetails(map[string]any{"path": abs})
	}

	cfg := config.NewDefault()
	cfg.Tracker.BaseURL = "https://jira.example.com/issues/"
	cfg.Filters = []config.FilterConfig{
		{Name: "UNASSIGNED", Query: "assignee is EMPTY AND resolution = Unresolved"},
	}
	cfg.Email.To = []string{"team@example.com"}
	cfg.SetPath(abs)

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"path": abs})
	}
	output.Messagef(os.Stdout, "Created %s — edit the tracker URL, filters, and recipients before running", abs)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-25s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	accessors := configAccessors()
	acc, ok := accessors[key]
	if !ok {
		return clierr.Newf(clierr.ConfigInvalid, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	accessors := configAccessors()
	acc, ok := accessors[key]
	if !ok {
		return clierr.Newf(clierr.ConfigInvalid, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.ConfigInvalid, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return clierr.Wrapf(clierr.ConfigInvalid, err, "%v", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func filterNames(c *config.Config) []string {
	names := make([]string, len(c.Filters))
	for i, f := range c.Filters {
		names[i] = f.Name
	}
	return names
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		if len(v) == 0 {
			return "--"
		}
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
