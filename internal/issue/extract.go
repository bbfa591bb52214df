package issue

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// ErrNoIssueTable means the page rendered but the issue table container
// is missing. Distinct from a navigation timeout, where the page never
// became ready at all.
var ErrNoIssueTable = errors.New("issue table not found in page")

// issueTableSelector locates the rendered issue table.
const issueTableSelector = "#issuetable"

// Extract parses a rendered DOM snapshot into the Sheet for one filter.
// An empty table body yields a Sheet with zero issues, not an error.
// Rows without a data-issuekey attribute are skipped.
func Extract(html string, spec FilterSpec, baseURL string, extras []ExtraField) (Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Sheet{}, fmt.Errorf("parsing page for filter %q: %w", spec.Name, err)
	}

	table := doc.Find(issueTableSelector)
	if table.Length() == 0 {
		return Sheet{}, fmt.Errorf("filter %q: %w", spec.Name, ErrNoIssueTable)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return Sheet{}, fmt.Errorf("parsing base URL: %w", err)
	}

	sheet := Sheet{
		Filter: spec,
		Name:   DisplayName(spec.Name),
		Issues: []Issue{},
	}
	for _, ef := range extras {
		sheet.ExtraNames = append(sheet.ExtraNames, ef.Name)
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		key, ok := row.Attr("data-issuekey")
		if !ok || key == "" {
			return
		}
		sheet.Issues = append(sheet.Issues, extractRow(row, key, base, extras))
	})

	return sheet, nil
}

// extractRow reads the fixed cell positions of one table row.
// Missing cells degrade to empty fields; only the row key is mandatory.
func extractRow(row *goquery.Selection, key string, base *url.URL, extras []ExtraField) Issue {
	iss := Issue{Key: key}

	if href, ok := row.Find("td.issuekey a.issue-link").Attr("href"); ok {
		iss.Link = resolveLink(base, href)
	}
	if alt, ok := row.Find("td.issuetype img").Attr("alt"); ok {
		iss.Type = strings.TrimSpace(alt)
	}
	iss.Summary = strings.TrimSpace(row.Find("td.summary p").Text())
	iss.Status = strings.TrimSpace(row.Find("td.status span").Text())
	if alt, ok := row.Find("td.priority img").Attr("alt"); ok {
		iss.Priority = strings.TrimSpace(alt)
	}
	iss.Assignee = extractAssignee(row.Find("td.assignee"))

	if t, ok := extractCreated(row.Find("td.created")); ok {
		iss.Dates = map[string]time.Time{ColumnCreated: t}
	}

	for _, ef := range extras {
		val := strings.TrimSpace(row.Find("td." + ef.CellClass).Text())
		iss.Extras = append(iss.Extras, val)
	}

	return iss
}

// extractAssignee handles the three assignee renderings: an em tag for
// unassigned issues, a user link, or plain cell text.
func extractAssignee(cell *goquery.Selection) string {
	if em := cell.Find("em"); em.Length() > 0 {
		return strings.TrimSpace(em.Text())
	}
	if a := cell.Find("a.user-hover"); a.Length() > 0 {
		return strings.TrimSpace(a.Text())
	}
	return strings.TrimSpace(cell.Text())
}

// extractCreated parses the created cell. The time element's datetime
// attribute is preferred; the visible cell text is the fallback. Values
// are normalized to UTC. Parse failure leaves the date absent.
func extractCreated(cell *goquery.Selection) (time.Time, bool) {
	if iso, ok := cell.Find("time").Attr("datetime"); ok && iso != "" {
		if t, err := time.Parse(time.RFC3339, iso); err == nil {
			return t.UTC(), true
		}
		if t, err := dateparse.ParseAny(iso); err == nil {
			return t.UTC(), true
		}
	}
	text := strings.TrimSpace(cell.Text())
	if text == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(text)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// resolveLink resolves an issue href against the page base URL and
// returns it only when the result is a well-formed absolute URL.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if !abs.IsAbs() || abs.Host == "" {
		return ""
	}
	return abs.String()
}
