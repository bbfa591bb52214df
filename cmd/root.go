// Package cmd implements the jirareport CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raulmdev/jirareport/internal/clierr"
	"github.com/raulmdev/jirareport/internal/config"
	"github.com/raulmdev/jirareport/internal/output"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagConfig  string
	flagJSON    bool
	flagNoColor bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "jirareport",
	Short: "Scrape tracker filters into a spreadsheet report and draft the email",
	Long: `jirareport drives a browser through the configured tracker filters,
collects each filter's issue table into one sheet of an xlsx report, and
leaves an email draft with the report attached in your mail client for review.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runReport,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "only log warnings and errors")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("JIRAREPORT_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// loadConfig loads and validates the run configuration, mapping the
// config package sentinels onto structured CLI errors.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrNotFound):
			return nil, clierr.Wrapf(clierr.ConfigNotFound, err, "%v", err)
		case errors.Is(err, config.ErrInvalid):
			return nil, clierr.Wrapf(clierr.ConfigInvalid, err, "%v", err)
		}
		return nil, err
	}
	return cfg, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON)
}
