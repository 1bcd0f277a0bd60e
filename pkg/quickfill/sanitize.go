package quickfill

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	// markupPattern matches tokens that only appear in real markup: closing
	// tags, void elements, comments and script or style openers. A bare
	// "a<b and c>d" has none of them.
	markupPattern = regexp.MustCompile(`(?i)</[a-z][a-z0-9-]*\s*>|<(?:br|hr|img|wbr|input|meta|link)\b[^<>]*>|<!--|<(?:script|style|iframe)\b`)
)

// SanitizeText returns plain, trimmed text. Values carrying markup are passed
// through a strict policy that drops every element; anything else is left
// untouched, so comparisons and ampersands survive. Entities escaped by the
// policy are decoded again because form values are plain strings, not HTML.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !markupPattern.MatchString(trimmed) {
		return trimmed
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
