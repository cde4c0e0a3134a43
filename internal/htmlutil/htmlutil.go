// Package htmlutil strips markup from source-provided HTML fragments so
// snippets are safe to embed in chat messages.
package htmlutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     = bluemonday.StrictPolicy()
	whitespace = regexp.MustCompile(`\s+`)
)

// Strip removes all HTML tags, unescapes entities, and collapses runs of
// whitespace to single spaces.
func Strip(s string) string {
	clean := policy.Sanitize(s)
	clean = html.UnescapeString(clean)
	return strings.TrimSpace(whitespace.ReplaceAllString(clean, " "))
}

// Snippet strips markup and truncates to max characters, appending an
// ellipsis when content was cut. Truncation is rune-safe.
func Snippet(s string, max int) string {
	clean := Strip(s)
	runes := []rune(clean)
	if len(runes) <= max {
		return clean
	}
	return string(runes[:max]) + "..."
}
