package notes

import (
	"strings"
	"unicode"

	"github.com/acarl005/stripansi"
	"github.com/greminder/greminder/internal/store"
)

// TitleLen is the maximum length of a generated title.
const TitleLen = 60

// GenerateTitle creates a one-line title from item contents: the first
// non-empty line, sanitized.
func GenerateTitle(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		if cleaned := SanitizeTitle(line); cleaned != "" {
			return cleaned
		}
	}
	return "[empty]"
}

// TruncateTitle ensures title is at most maxLen characters.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes terminal escape sequences and control characters
// and collapses whitespace.
func SanitizeTitle(title string) string {
	title = stripansi.Strip(title)
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}

// ShortFingerprint returns the first 8 digits of a fingerprint.
func ShortFingerprint(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}

// Summary renders an item as one line: short fingerprint, title and
// keywords.
func Summary(item *store.Item) string {
	return ShortFingerprint(item.Fingerprint()) + "  " +
		TruncateTitle(GenerateTitle(item.Contents()), TitleLen) +
		"  [" + strings.Join(item.Keywords(), " ") + "]"
}
