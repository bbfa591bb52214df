// Package report renders extracted issue sheets into a formatted
// xlsx workbook.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/raulmdev/jirareport/internal/issue"
)

// headerFillColor is the solid background of the header row.
const headerFillColor = "DDEBF7"

// dateNumFmt is the display format for date cells.
const dateNumFmt = "yyyy-mm-dd hh:mm:ss"

// renderedDateWidth is how many characters a formatted date occupies.
const renderedDateWidth = len("2006-01-02 15:04:05")

// Options configures workbook output.
type Options struct {
	// OutputDir is the directory the workbook is written to.
	OutputDir string

	// MaxColumnWidth caps auto-sized column widths.
	MaxColumnWidth int

	// Timestamp is the run time embedded in the filename.
	Timestamp time.Time
}

// Build writes one worksheet per input sheet, in order, and returns the
// path of the saved workbook. The filename embeds the run timestamp;
// an existing file at that path gets a numeric suffix instead.
func Build(sheets []issue.Sheet, opts Options) (string, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to release on error

	styles, err := newStyles(f)
	if err != nil {
		return "", fmt.Errorf("creating styles: %w", err)
	}

	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	names = uniqueSheetNames(names)

	// The workbook starts with a default sheet; rename it into the
	// first real sheet rather than deleting it afterwards, which would
	// destroy a user sheet that happens to be named "Sheet1".
	if len(sheets) > 0 && names[0] != "Sheet1" {
		if err := f.SetSheetName("Sheet1", names[0]); err != nil {
			return "", fmt.Errorf("renaming default sheet: %w", err)
		}
	}

	for i, s := range sheets {
		if err := writeSheet(f, names[i], s, styles, opts.MaxColumnWidth); err != nil {
			return "", fmt.Errorf("writing sheet %q: %w", names[i], err)
		}
	}

	path, err := reportPath(opts.OutputDir, opts.Timestamp)
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

// cellStyles holds the style IDs registered on one workbook.
type cellStyles struct {
	header int
	link   int
	date   int
}

func newStyles(f *excelize.File) (cellStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return cellStyles{}, err
	}
	link, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return cellStyles{}, err
	}
	numFmt := dateNumFmt
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return cellStyles{}, err
	}
	return cellStyles{header: header, link: link, date: date}, nil
}

// writeSheet writes the header row, one row per issue, the column
// widths, and the auto-filter for a single worksheet.
func writeSheet(f *excelize.File, name string, s issue.Sheet, styles cellStyles, maxWidth int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	headers := append(issue.BaseColumns(), s.ExtraNames...)
	widths := make([]int, len(headers))
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(name, cell, h); err != nil {
			return err
		}
		// Bold headers render wider than their character count.
		widths[c] = len(h) * 3 / 2
	}

	headerCells, err := rowRange(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, headerCells[0], headerCells[1], styles.header); err != nil {
		return err
	}

	for r, iss := range s.Issues {
		if err := writeIssueRow(f, name, r+2, iss, styles, widths); err != nil {
			return err
		}
	}

	for c := range headers {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		w := widths[c] + 2
		if w > maxWidth {
			w = maxWidth
		}
		if err := f.SetColWidth(name, col, col, float64(w)); err != nil {
			return err
		}
	}

	// Auto-filter covers the header plus all data rows; just the
	// header when the sheet is empty.
	lastCell, err := excelize.CoordinatesToCellName(len(headers), len(s.Issues)+1)
	if err != nil {
		return err
	}
	return f.AutoFilter(name, "A1:"+lastCell, nil)
}

// writeIssueRow writes one issue at the given 1-based row, updating the
// running column widths.
func writeIssueRow(f *excelize.File, sheet string, row int, iss issue.Issue, styles cellStyles, widths []int) error {
	values := []string{iss.Key, iss.Type, iss.Summary, iss.Status, iss.Priority, iss.Assignee}

	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return err
		}
		if len(v) > widths[c] {
			widths[c] = len(v)
		}
	}

	// The key cell doubles as the issue hyperlink when the link is a
	// well-formed absolute URL.
	if iss.Link != "" {
		keyCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, keyCell, iss.Link, "External"); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, keyCell, keyCell, styles.link); err != nil {
			return err
		}
	}

	dateCol := len(values) + 1
	if created := iss.Created(); created != nil {
		cell, err := excelize.CoordinatesToCellName(dateCol, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, *created); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.date); err != nil {
			return err
		}
		if renderedDateWidth > widths[dateCol-1] {
			widths[dateCol-1] = renderedDateWidth
		}
	}

	for i, v := range iss.Extras {
		c := dateCol + i
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return err
		}
		if c < len(widths) && len(v) > widths[c] {
			widths[c] = len(v)
		}
	}

	return nil
}

// rowRange returns the first and last cell names of a 1-based row
// spanning cols columns.
func rowRange(cols, row int) ([2]string, error) {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return [2]string{}, err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return [2]string{}, err
	}
	return [2]string{first, last}, nil
}

// reportPath builds the timestamped workbook path, suffixing a counter
// when a run within the same second already produced that file.
func reportPath(dir string, ts time.Time) (string, error) {
	base := fmt.Sprintf("jira_issues_%s", ts.Format("20060102_150405"))
	path := filepath.Join(dir, base+".xlsx")
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("checking report path: %w", err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.xlsx", base, n))
	}
}
