// Package issue holds the tracker domain types and the DOM extractor.
package issue

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// FilterSpec is one named tracker query, equivalent to a saved search.
type FilterSpec struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// ExtraField maps a custom tracker column onto a report column.
type ExtraField struct {
	Name      string
	CellClass string
}

// Issue represents one row of the rendered issue table.
type Issue struct {
	Key      string `json:"key"`
	Type     string `json:"type,omitempty"`
	Link     string `json:"link,omitempty"` // absolute URL, empty when unresolvable
	Summary  string `json:"summary,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Assignee string `json:"assignee,omitempty"`

	// Dates maps a date column name to its parsed value. A cell whose
	// text fails to parse is simply absent from the map.
	Dates map[string]time.Time `json:"dates,omitempty"`

	// Extras holds custom-field values aligned with the configured
	// extra fields, in order.
	Extras []string `json:"extras,omitempty"`
}

// Created returns the parsed created date, or nil if the cell was
// missing or unparseable.
func (i *Issue) Created() *time.Time {
	if t, ok := i.Dates[ColumnCreated]; ok {
		return &t
	}
	return nil
}

// Sheet is the ordered set of issues extracted for one filter.
type Sheet struct {
	Filter FilterSpec `json:"filter"`
	Name   string     `json:"name"` // display name derived from the filter name
	Issues []Issue    `json:"issues"`

	// ExtraNames are the headers of the configured extra columns.
	ExtraNames []string `json:"extra_names,omitempty"`
}

// Fixed report column headers, in output order. Extra columns follow.
const (
	ColumnKey      = "Key"
	ColumnType     = "Type"
	ColumnSummary  = "Summary"
	ColumnStatus   = "Status"
	ColumnPriority = "Priority"
	ColumnAssignee = "Assignee"
	ColumnCreated  = "Created"
)

// BaseColumns returns the fixed column headers in order.
func BaseColumns() []string {
	return []string{
		ColumnKey, ColumnType, ColumnSummary, ColumnStatus,
		ColumnPriority, ColumnAssignee, ColumnCreated,
	}
}

// IsDateColumn reports whether a column holds date values.
func IsDateColumn(name string) bool {
	return name == ColumnCreated
}

// QueryURL builds the tracker search URL for a filter by encoding its
// query into the jql parameter of the base URL.
func QueryURL(baseURL, query string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	q := u.Query()
	q.Set("jql", query)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DisplayName turns a filter name into a human-readable sheet name:
// separators become spaces and each word is title-cased.
// "IN_PROGRESS" becomes "In Progress".
func DisplayName(filterName string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(filterName)
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
