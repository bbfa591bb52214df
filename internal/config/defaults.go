// Package config handles the jirareport run configuration.
package config

const (
	// ConfigFileName is the default name of the config file.
	ConfigFileName = "jirareport.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	// DefaultReadySelector marks the element whose presence signals that
	// the issue table has finished rendering.
	DefaultReadySelector = ".issue-table-wrapper"

	// DefaultTimeoutSeconds is the navigation wait timeout.
	DefaultTimeoutSeconds = 10

	// DefaultSubjectPrefix prefixes the draft subject before the run date.
	DefaultSubjectPrefix = "JIRA report"

	// DefaultMaxColumnWidth caps workbook column auto-sizing.
	DefaultMaxColumnWidth = 80
)

// DefaultBodyTemplate is the HTML body used when email.body_template is unset.
// Placeholders: {DATE}, {ISSUE_COUNT}, {SHEET_COUNT}, {SHEET_LIST}.
const DefaultBodyTemplate = `<p>Issue report generated on {DATE}.</p>
<p>{ISSUE_COUNT} issues across {SHEET_COUNT} sheets:</p>
{SHEET_LIST}
<p>The full report is attached.</p>
`
