package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate caps s at max bytes, backing up to a rune boundary so a
// multibyte character is never split. Used to keep raw provider bodies
// out of error messages at full length.
func Truncate(s string, max int) string {
	if max < 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// FirstNonEmpty returns the first value that is not blank after trimming
// whitespace, or "" when every value is blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
