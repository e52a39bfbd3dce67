// Package slug derives URL slugs from article titles. Titles mix
// Latin and Hangul, so Hangul syllables are kept as-is rather than
// transliterated.
package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9가-힣\s-]`)
	spaces     = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Make converts a title into its slug: lowercase, strip everything
// but letters, digits, Hangul, spaces and hyphens, turn spaces into
// hyphens and collapse runs of hyphens.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = disallowed.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
