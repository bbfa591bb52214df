// Package runner drives one report run end to end: open the browser,
// extract every configured filter, build the workbook, present the
// draft, clean up. Stages run strictly in sequence.
package runner

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raulmdev/jirareport/internal/browser"
	"github.com/raulmdev/jirareport/internal/clierr"
	"github.com/raulmdev/jirareport/internal/config"
	"github.com/raulmdev/jirareport/internal/issue"
	"github.com/raulmdev/jirareport/internal/mail"
	"github.com/raulmdev/jirareport/internal/report"
)

// Stage names attached to failures so callers can tell where a run died.
const (
	StageBrowser = "browser"
	StageExtract = "extract"
	StageReport  = "report"
	StagePresent = "present"
)

// Navigator is the borrowed browser handle the extraction loop drives.
type Navigator interface {
	Navigate(url, readySelector string, timeout time.Duration) (string, error)
	Close()
}

// Summary describes a completed run.
type Summary struct {
	Sheets      []SheetSummary `json:"sheets"`
	TotalIssues int            `json:"total_issues"`
	ReportPath  string         `json:"report_path"`
	DraftPath   string         `json:"draft_path"`
	ReportKept  bool           `json:"report_kept"`
	Elapsed     time.Duration  `json:"elapsed_ns"`
}

// SheetSummary is the per-filter slice of a Summary.
type SheetSummary struct {
	Name   string `json:"name"`
	Filter string `json:"filter"`
	Rows   int    `json:"rows"`
}

// Runner executes the pipeline. The indirection points exist so tests
// can substitute the browser, the workbook writer, and the mail client.
type Runner struct {
	cfg *config.Config
	log *logrus.Logger

	openBrowser func(ctx context.Context, opts browser.Options) (Navigator, error)
	buildReport func(sheets []issue.Sheet, opts report.Options) (string, error)
	present     func(draft *mail.Draft, dir string) (string, error)
	now         func() time.Time
}

// New creates a Runner wired to the real browser, workbook writer, and
// mail client.
func New(cfg *config.Config, log *logrus.Logger) *Runner {
	return &Runner{
		cfg: cfg,
		log: log,
		openBrowser: func(ctx context.Context, opts browser.Options) (Navigator, error) {
			return browser.Open(ctx, opts)
		},
		buildReport: report.Build,
		present:     mail.Present,
		now:         time.Now,
	}
}

// Run executes one report run. The browser session is released on
// every path out of this function. On a present failure the report
// file is retained and its path is attached to the returned error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := r.now()

	r.log.WithField("headless", r.cfg.Tracker.Headless).Info("opening browser")
	session, err := r.openBrowser(ctx, browser.Options{Headless: r.cfg.Tracker.Headless})
	if err != nil {
		return nil, clierr.Wrapf(clierr.BrowserOpenFailed, err, "opening browser: %v", err).
			WithDetails(map[string]any{"stage": StageBrowser})
	}
	defer session.Close()

	sheets, err := r.extractAll(session)
	if err != nil {
		return nil, err
	}

	reportPath, err := r.buildReport(sheets, report.Options{
		OutputDir:      r.cfg.OutputDir(),
		MaxColumnWidth: r.cfg.MaxColumnWidth(),
		Timestamp:      start,
	})
	if err != nil {
		return nil, clierr.Wrapf(clierr.ReportWriteFailed, err, "writing report: %v", err).
			WithDetails(map[string]any{"stage": StageReport})
	}
	r.log.WithFields(logrus.Fields{"path": reportPath, "sheets": len(sheets)}).Info("report written")

	summary := newSummary(sheets, reportPath)

	draft, err := mail.Compose(sheets, reportPath, mail.Options{
		To:            r.cfg.Email.To,
		CC:            r.cfg.Email.CC,
		SubjectPrefix: r.cfg.Email.SubjectPrefix,
		BodyTemplate:  r.cfg.BodyTemplate(),
		Date:          start,
	})
	if err != nil {
		// Composition failed before the mail client saw the draft, so
		// the report file stays on disk for diagnosis.
		return nil, clierr.Wrapf(clierr.DraftPresentFailed, err, "composing draft: %v", err).
			WithDetails(map[string]any{"stage": StagePresent, "report_path": reportPath})
	}

	draftPath, err := r.present(draft, r.cfg.OutputDir())
	if err != nil {
		// Cannot clean up an attachment the draft never captured.
		return nil, clierr.Wrapf(clierr.DraftPresentFailed, err, "presenting draft: %v", err).
			WithDetails(map[string]any{"stage": StagePresent, "report_path": reportPath})
	}
	summary.DraftPath = draftPath
	r.log.WithField("path", draftPath).Info("draft handed to mail client for review")

	summary.ReportKept = r.cfg.Report.KeepFile
	if !r.cfg.Report.KeepFile {
		if err := os.Remove(reportPath); err != nil {
			// The draft already captured the attachment; a leftover
			// temp file is not worth failing the run over.
			r.log.WithError(err).Warn("could not remove report file")
			summary.ReportKept = true
		}
	}

	summary.Elapsed = r.now().Sub(start)
	return summary, nil
}

// extractAll navigates to each filter in declaration order and parses
// its issue table. Any failure aborts the whole run; there is no
// per-filter recovery.
func (r *Runner) extractAll(session Navigator) ([]issue.Sheet, error) {
	extras := make([]issue.ExtraField, len(r.cfg.Tracker.ExtraFields))
	for i, ef := range r.cfg.Tracker.ExtraFields {
		extras[i] = issue.ExtraField{Name: ef.Name, CellClass: ef.CellClass}
	}

	sheets := make([]issue.Sheet, 0, len(r.cfg.Filters))
	for _, f := range r.cfg.Filters {
		spec := issue.FilterSpec{Name: f.Name, Query: f.Query}
		log := r.log.WithField("filter", spec.Name)

		pageURL, err := issue.QueryURL(r.cfg.Tracker.BaseURL, spec.Query)
		if err != nil {
			return nil, clierr.Wrapf(clierr.ExtractionFailed, err, "filter %q: %v", spec.Name, err).
				WithDetails(map[string]any{"stage": StageExtract, "filter": spec.Name})
		}

		log.WithField("url", pageURL).Info("navigating")
		html, err := session.Navigate(pageURL, r.cfg.Tracker.ReadySelector, r.cfg.Timeout())
		if err != nil {
			code := clierr.ExtractionFailed
			if errors.Is(err, browser.ErrNavigationTimeout) {
				code = clierr.NavigationTimeout
			}
			return nil, clierr.Wrapf(code, err, "filter %q: %v", spec.Name, err).
				WithDetails(map[string]any{"stage": StageExtract, "filter": spec.Name})
		}

		sheet, err := issue.Extract(html, spec, r.cfg.Tracker.BaseURL, extras)
		if err != nil {
			return nil, clierr.Wrapf(clierr.ExtractionFailed, err, "%v", err).
				WithDetails(map[string]any{"stage": StageExtract, "filter": spec.Name})
		}
		log.WithField("rows", len(sheet.Issues)).Info("extracted")
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func newSummary(sheets []issue.Sheet, reportPath string) *Summary {
	s := &Summary{ReportPath: reportPath}
	for _, sh := range sheets {
		s.Sheets = append(s.Sheets, SheetSummary{Name: sh.Name, Filter: sh.Filter.Name, Rows: len(sh.Issues)})
		s.TotalIssues += len(sh.Issues)
	}
	return s
}

var _ Navigator = (*browser.Session)(nil)
