// Package sanitizer normalizes user input before validation and submission.
// All functions are idempotent and handle empty input gracefully.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading and trailing whitespace and collapses inner
// whitespace runs to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail lowercases in addition to trimming, matching the
// normalization the service applies on its side so both ends agree on the
// account key.
func NormalizeEmail(email string) string {
	return strings.ToLower(TrimAndNormalize(email))
}

// NormalizeTags trims each tag, drops empties and deduplicates while
// preserving order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(TrimAndNormalize(tag))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}
