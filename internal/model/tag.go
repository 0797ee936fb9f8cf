package model

import (
	"strings"
	"unicode"
)

// NormalizeTag turns a suggested tag into the stored form: lowercase,
// words joined by underscores, nothing but letters, digits and underscores.
// Returns "" if nothing is left.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(tag) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || r == '-' || unicode.IsSpace(r):
			if b.Len() > 0 && !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimRight(b.String(), "_")
}

// NormalizeTags normalizes each tag, dropping empties and duplicates.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		t := NormalizeTag(tag)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

// MergeTags appends normalized additions to existing, keeping order and
// skipping tags already present.
func MergeTags(existing, additions []string) []string {
	result := make([]string, 0, len(existing)+len(additions))
	seen := make(map[string]bool)
	for _, tag := range existing {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	for _, tag := range NormalizeTags(additions) {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}
