package report

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeSheetName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"In Progress", "In Progress"},
		{"Ops/Infra: Open?", "Ops Infra Open"},
		{"", "Sheet"},
		{"[]:*?/\\", "Sheet"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{strings.Repeat("é", 16), strings.Repeat("é", 16)},
		{strings.Repeat("é", 40), strings.Repeat("é", 31)},
	}
	for _, tc := range cases {
		got := sanitizeSheetName(tc.in)
		if got != tc.want {
			t.Errorf("sanitizeSheetName(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("sanitizeSheetName(%q) produced invalid UTF-8: %q", tc.in, got)
		}
	}
}

func TestUniqueSheetNames(t *testing.T) {
	t.Run("plain collision gets a suffix", func(t *testing.T) {
		got := uniqueSheetNames([]string{"Open", "Open", "Open"})
		want := []string{"Open", "Open (2)", "Open (3)"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("name %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("names colliding after truncation stay unique and within the limit", func(t *testing.T) {
		long := strings.Repeat("Quarterly Review ", 3) // > 31 chars
		got := uniqueSheetNames([]string{long + "A", long + "B"})
		if got[0] == got[1] {
			t.Fatalf("names not disambiguated: %q", got[0])
		}
		for _, name := range got {
			if len(name) > maxSheetNameLen {
				t.Errorf("name %q exceeds %d chars", name, maxSheetNameLen)
			}
		}
	})

	t.Run("multibyte collisions keep valid UTF-8", func(t *testing.T) {
		long := strings.Repeat("é", 40)
		got := uniqueSheetNames([]string{long, long})
		if got[0] == got[1] {
			t.Fatalf("names not disambiguated: %q", got[0])
		}
		for _, name := range got {
			if !utf8.ValidString(name) {
				t.Errorf("name %q is not valid UTF-8", name)
			}
			if utf8.RuneCountInString(name) > maxSheetNameLen {
				t.Errorf("name %q exceeds %d chars", name, maxSheetNameLen)
			}
		}
	})
}
