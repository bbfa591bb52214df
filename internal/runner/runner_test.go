package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raulmdev/jirareport/internal/browser"
	"github.com/raulmdev/jirareport/internal/clierr"
	"github.com/raulmdev/jirareport/internal/config"
	"github.com/raulmdev/jirareport/internal/issue"
	"github.com/raulmdev/jirareport/internal/mail"
	"github.com/raulmdev/jirareport/internal/report"
)

const fixturePage = `<html><body>
<table id="issuetable"><tbody>
<tr data-issuekey="OPS-1">
  <td class="issuekey"><a class="issue-link" href="/browse/OPS-1">OPS-1</a></td>
  <td class="summary"><p>First</p></td>
  <td class="status"><span>Open</span></td>
</tr>
<tr data-issuekey="OPS-2">
  <td class="issuekey"><a class="issue-link" href="/browse/OPS-2">OPS-2</a></td>
  <td class="summary"><p>Second</p></td>
  <td class="status"><span>Open</span></td>
</tr>
</tbody></table>
</body></html>`

const emptyPage = `<html><body><table id="issuetable"><tbody></tbody></table></body></html>`

type fakeNavigator struct {
	pages  map[string]string // ready selector is ignored; keyed by jql query
	err    error
	visits int
	closed bool
}

func (f *fakeNavigator) Navigate(pageURL, _ string, _ time.Duration) (string, error) {
	f.visits++
	if f.err != nil {
		return "", f.err
	}
	for jql, page := range f.pages {
		if containsQuery(pageURL, jql) {
			return page, nil
		}
	}
	return emptyPage, nil
}

func (f *fakeNavigator) Close() { f.closed = true }

func containsQuery(pageURL, jql string) bool {
	got, err := issue.QueryURL("https://jira.example.com/issues/", jql)
	return err == nil && got == pageURL
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Version: config.CurrentVersion,
		Tracker: config.TrackerConfig{
			BaseURL:        "https://jira.example.com/issues/",
			ReadySelector:  ".issue-table-wrapper",
			TimeoutSeconds: 5,
			Headless:       true,
		},
		Filters: []config.FilterConfig{
			{Name: "UNASSIGNED", Query: "assignee is EMPTY"},
			{Name: "IN_PROGRESS", Query: `status = "In Progress"`},
		},
		Email: config.EmailConfig{
			To:            []string{"ops@example.com"},
			SubjectPrefix: "JIRA report",
		},
		Report: config.ReportConfig{OutputDir: t.TempDir()},
	}
}

// testRunner wires a Runner with fakes. The workbook build is replaced
// with a plain file write so tests stay fast and assertable.
func testRunner(t *testing.T, cfg *config.Config, nav *fakeNavigator) (*Runner, *string, *string) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	var builtPath, presentedPath string
	r := &Runner{
		cfg: cfg,
		log: log,
		openBrowser: func(_ context.Context, _ browser.Options) (Navigator, error) {
			return nav, nil
		},
		buildReport: func(sheets []issue.Sheet, opts report.Options) (string, error) {
			path := filepath.Join(opts.OutputDir, "report.xlsx")
			if err := os.WriteFile(path, []byte("workbook"), 0o600); err != nil {
				return "", err
			}
			builtPath = path
			return path, nil
		},
		present: func(draft *mail.Draft, dir string) (string, error) {
			presentedPath = draft.AttachmentPath
			return filepath.Join(dir, "report.eml"), nil
		},
		now: time.Now,
	}
	return r, &builtPath, &presentedPath
}

func TestRun(t *testing.T) {
	t.Run("successful run cleans up the report", func(t *testing.T) {
		cfg := testConfig(t)
		nav := &fakeNavigator{pages: map[string]string{"assignee is EMPTY": fixturePage}}
		r, builtPath, presentedPath := testRunner(t, cfg, nav)

		summary, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !nav.closed {
			t.Error("browser session not closed")
		}
		if nav.visits != 2 {
			t.Errorf("got %d navigations, want 2", nav.visits)
		}
		if summary.TotalIssues != 2 {
			t.Errorf("total issues: got %d, want 2", summary.TotalIssues)
		}
		if len(summary.Sheets) != 2 {
			t.Fatalf("sheets: got %d, want 2", len(summary.Sheets))
		}
		if summary.Sheets[0].Name != "Unassigned" || summary.Sheets[0].Rows != 2 {
			t.Errorf("first sheet: %+v", summary.Sheets[0])
		}
		if summary.Sheets[1].Name != "In Progress" || summary.Sheets[1].Rows != 0 {
			t.Errorf("second sheet: %+v", summary.Sheets[1])
		}
		if *presentedPath != *builtPath {
			t.Errorf("draft attached %q, report built %q", *presentedPath, *builtPath)
		}
		if _, err := os.Stat(*builtPath); !os.IsNotExist(err) {
			t.Error("report file should be deleted after a successful present")
		}
		if summary.ReportKept {
			t.Error("summary should record the report as cleaned up")
		}
	})

	t.Run("keep_file retains the report", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Report.KeepFile = true
		nav := &fakeNavigator{}
		r, builtPath, _ := testRunner(t, cfg, nav)

		summary, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if _, err := os.Stat(*builtPath); err != nil {
			t.Errorf("report file should be retained: %v", err)
		}
		if !summary.ReportKept {
			t.Error("summary should record the report as kept")
		}
	})

	t.Run("navigation timeout aborts before any report is written", func(t *testing.T) {
		cfg := testConfig(t)
		nav := &fakeNavigator{err: fmt.Errorf("wrapped: %w", browser.ErrNavigationTimeout)}
		r, builtPath, _ := testRunner(t, cfg, nav)

		_, err := r.Run(context.Background())
		var cliErr *clierr.Error
		if !errors.As(err, &cliErr) || cliErr.Code != clierr.NavigationTimeout {
			t.Fatalf("got %v, want NAVIGATION_TIMEOUT", err)
		}
		if !nav.closed {
			t.Error("browser session not closed after timeout")
		}
		if nav.visits != 1 {
			t.Errorf("run should abort on the first filter, got %d navigations", nav.visits)
		}
		if *builtPath != "" {
			t.Error("no report should be written after a timeout")
		}
	})

	t.Run("missing issue table is an extraction failure", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Filters = cfg.Filters[:1]
		nav := &fakeNavigator{pages: map[string]string{"assignee is EMPTY": "<html><body>no table</body></html>"}}
		r, _, _ := testRunner(t, cfg, nav)

		_, err := r.Run(context.Background())
		var cliErr *clierr.Error
		if !errors.As(err, &cliErr) || cliErr.Code != clierr.ExtractionFailed {
			t.Fatalf("got %v, want EXTRACTION_FAILED", err)
		}
		if !nav.closed {
			t.Error("browser session not closed after extraction failure")
		}
	})

	t.Run("present failure keeps the report and carries its path", func(t *testing.T) {
		cfg := testConfig(t)
		nav := &fakeNavigator{}
		r, builtPath, _ := testRunner(t, cfg, nav)
		r.present = func(*mail.Draft, string) (string, error) {
			return "", errors.New("mail client unreachable")
		}

		_, err := r.Run(context.Background())
		var cliErr *clierr.Error
		if !errors.As(err, &cliErr) || cliErr.Code != clierr.DraftPresentFailed {
			t.Fatalf("got %v, want DRAFT_PRESENT_FAILED", err)
		}
		if got := cliErr.Details["report_path"]; got != *builtPath {
			t.Errorf("details report_path: got %v, want %q", got, *builtPath)
		}
		if _, statErr := os.Stat(*builtPath); statErr != nil {
			t.Errorf("report file should be retained: %v", statErr)
		}
		if !nav.closed {
			t.Error("browser session not closed after present failure")
		}
	})

	t.Run("browser open failure is coded", func(t *testing.T) {
		cfg := testConfig(t)
		r, _, _ := testRunner(t, cfg, &fakeNavigator{})
		r.openBrowser = func(context.Context, browser.Options) (Navigator, error) {
			return nil, errors.New("chrome not found")
		}

		_, err := r.Run(context.Background())
		var cliErr *clierr.Error
		if !errors.As(err, &cliErr) || cliErr.Code != clierr.BrowserOpenFailed {
			t.Fatalf("got %v, want BROWSER_OPEN_FAILED", err)
		}
	})
}
