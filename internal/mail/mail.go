// Package mail composes the report notification draft and hands it to
// the desktop mail client for human review. Nothing is ever sent.
package mail

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/raulmdev/jirareport/internal/issue"
)

// Template placeholders recognized in the HTML body.
const (
	PlaceholderDate       = "{DATE}"
	PlaceholderIssueCount = "{ISSUE_COUNT}"
	PlaceholderSheetCount = "{SHEET_COUNT}"
	PlaceholderSheetList  = "{SHEET_LIST}"
)

// subjectDateFormat is the run date as it appears in the subject and body.
const subjectDateFormat = "2006-01-02"

// Draft is an unsent email message. Ownership passes to the mail
// client once Present succeeds.
type Draft struct {
	To             []string
	CC             []string
	Subject        string
	HTMLBody       string
	AttachmentPath string
}

// Options carries the configured pieces of the draft.
type Options struct {
	To            []string
	CC            []string
	SubjectPrefix string
	BodyTemplate  string
	Date          time.Time
}

// Compose builds the draft for a finished report. The subject is the
// configured prefix followed by the run date; the body template's
// placeholders are substituted with the run totals.
func Compose(sheets []issue.Sheet, reportPath string, opts Options) (*Draft, error) {
	if len(opts.To) == 0 {
		return nil, fmt.Errorf("no TO recipients configured")
	}

	total := 0
	items := make([]string, 0, len(sheets))
	for _, s := range sheets {
		total += len(s.Issues)
		items = append(items, fmt.Sprintf("<li>%s (%d)</li>", html.EscapeString(s.Name), len(s.Issues)))
	}
	sheetList := "<ul>\n" + strings.Join(items, "\n") + "\n</ul>"

	date := opts.Date.Format(subjectDateFormat)
	body := strings.NewReplacer(
		PlaceholderDate, date,
		PlaceholderIssueCount, strconv.Itoa(total),
		PlaceholderSheetCount, strconv.Itoa(len(sheets)),
		PlaceholderSheetList, sheetList,
	).Replace(opts.BodyTemplate)

	return &Draft{
		To:             opts.To,
		CC:             opts.CC,
		Subject:        strings.TrimSpace(strings.TrimSpace(opts.SubjectPrefix) + " " + date),
		HTMLBody:       body,
		AttachmentPath: reportPath,
	}, nil
}
