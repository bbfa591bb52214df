package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raulmdev/jirareport/internal/output"
	"github.com/raulmdev/jirareport/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one report run",
	Long: `Opens the browser, extracts every configured filter in order, writes
the xlsx report, and leaves an email draft in the mail client for review.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().Bool("headless", false, "run the browser headless (overrides config)")
		cmd.Flags().Bool("headful", false, "run the browser with a visible window (overrides config)")
		cmd.Flags().Bool("keep-report", false, "retain the report file after the draft is created")
		cmd.Flags().SetNormalizeFunc(normalizeRunFlags)
	}
	rootCmd.AddCommand(runCmd)
}

// normalizeRunFlags accepts --keep as shorthand for --keep-report.
func normalizeRunFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "keep" {
		name = "keep-report"
	}
	return pflag.NormalizedName(name)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("headless") {
		cfg.Tracker.Headless, _ = cmd.Flags().GetBool("headless")
	}
	if headful, _ := cmd.Flags().GetBool("headful"); headful {
		cfg.Tracker.Headless = false
	}
	if keep, _ := cmd.Flags().GetBool("keep-report"); keep {
		cfg.Report.KeepFile = true
	}

	log := newLogger()

	// Ctrl-C tears the run down through the same path as a failure,
	// so the browser process is still released.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runner.New(cfg, log).Run(ctx)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, summary)
	}
	output.SummaryTable(os.Stdout, summary)
	return nil
}

// newLogger builds the run logger. Logs go to stderr so stdout stays
// clean for the summary.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if flagQuiet {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
