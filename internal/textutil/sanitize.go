package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	slugDropPattern   = regexp.MustCompile(`[^a-z0-9.-]`)
	dashRunPattern    = regexp.MustCompile(`-+`)
)

// asciiFold decomposes accented characters and drops everything outside ASCII,
// so "Rosalía" becomes "Rosalia" and emoji disappear.
func asciiFold(value string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(folder, value)
	if err != nil {
		return ""
	}
	return out
}

// SanitizeFileName turns an event name into the stem used for cache files:
// ASCII-folded, lowercased, whitespace runs replaced by one dash, anything but
// [a-z0-9.-] removed, dash runs collapsed. Leading and trailing dashes are kept
// so existing cache paths stay stable.
func SanitizeFileName(name string) string {
	name = strings.ToLower(asciiFold(name))
	name = whitespacePattern.ReplaceAllString(name, "-")
	name = slugDropPattern.ReplaceAllString(name, "")
	return dashRunPattern.ReplaceAllString(name, "-")
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(asciiFold(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
