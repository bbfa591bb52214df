package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxSheetNameLen is the xlsx worksheet name limit, in characters.
const maxSheetNameLen = 31

// forbidden holds the characters xlsx disallows in worksheet names.
const forbidden = `[]:*?/\`

// sanitizeSheetName strips forbidden characters and trims the name to
// the worksheet limit. An empty result falls back to "Sheet".
func sanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbidden, r) {
			r = ' '
		}
		b.WriteRune(r)
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	if s == "" {
		s = "Sheet"
	}
	return strings.TrimSpace(truncate(s, maxSheetNameLen))
}

// truncate shortens s to at most n characters. The limit counts runes,
// not bytes, so multibyte names are never cut mid-rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// uniqueSheetNames sanitizes every name and disambiguates collisions
// with a numeric suffix, shortening the base so the suffixed name still
// fits the worksheet limit.
func uniqueSheetNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		s := sanitizeSheetName(name)
		if !used[s] {
			used[s] = true
			out[i] = s
			continue
		}
		for n := 2; ; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			base := strings.TrimSpace(truncate(s, maxSheetNameLen-len(suffix)))
			candidate := base + suffix
			if !used[candidate] {
				used[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
