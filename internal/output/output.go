// Package output handles formatting CLI output as a summary table or JSON.
package output

import (
	"fmt"
	"io"
	"os"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
)

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if os.Getenv("JIRAREPORT_OUTPUT") == "json" {
		return FormatJSON
	}
	return FormatTable
}

// Messagef writes a plain formatted message followed by a newline.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
