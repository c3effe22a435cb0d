package service

import (
	"strings"
	"unicode"
)

// excerptRunes is how much of the content is kept when no excerpt is supplied.
const excerptRunes = 200

// Slugify derives the canonical URL slug for a title: lowercase, strip
// everything outside [a-z0-9\s-], collapse whitespace runs to single hyphens,
// collapse hyphen runs, trim leading/trailing hyphens. The result contains
// only [a-z0-9-] and is idempotent, so it doubles as the article's stable
// external lookup key.
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// MakeExcerpt truncates content to the first excerptRunes runes with a
// trailing ellipsis. Content at or under the limit is returned unchanged.
func MakeExcerpt(content string) string {
	trimmed := strings.TrimSpace(content)
	runes := []rune(trimmed)
	if len(runes) <= excerptRunes {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:excerptRunes])) + "..."
}
