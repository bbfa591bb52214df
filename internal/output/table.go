package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raulmdev/jirareport/internal/runner"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	countStyle = lipgloss.NewStyle()
	emptyStyle = lipgloss.NewStyle()
}

// SummaryTable renders a run summary as a formatted table.
func SummaryTable(w io.Writer, s *runner.Summary) {
	// Calculate column widths.
	const pad = 2
	sheetW, filterW, rowsW := 7, 8, 6
	for _, sh := range s.Sheets {
		sheetW = max(sheetW, len(sh.Name)+pad)
		filterW = max(filterW, min(len(sh.Filter)+pad, 40)) //nolint:mnd // max filter column width
		rowsW = max(rowsW, len(strconv.Itoa(sh.Rows))+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s", sheetW, "SHEET", filterW, "FILTER", rowsW, "ROWS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, sh := range s.Sheets {
		filter := sh.Filter
		const maxFilter = 38
		if len(filter) > maxFilter {
			filter = filter[:maxFilter-3] + "..."
		}
		rows := countStyle.Render(strconv.Itoa(sh.Rows))
		if sh.Rows == 0 {
			rows = emptyStyle.Render("0")
		}
		fmt.Fprintf(w, "%-*s %-*s %s\n", sheetW, sh.Name, filterW, filter, rows)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d issues across %d sheets\n", s.TotalIssues, len(s.Sheets))
	if s.DraftPath != "" {
		fmt.Fprintln(w, dimStyle.Render("draft: "+s.DraftPath))
	}
	if s.ReportKept {
		fmt.Fprintln(w, dimStyle.Render("report: "+s.ReportPath))
	}
}
