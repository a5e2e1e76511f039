// Package extract finds the first hyperlink in decoded message text.
package extract

import (
	"iter"
	"regexp"

	"github.com/ejohansen/mailwatch/internal/decoder"
)

// urlPattern accepts an http(s) scheme followed by anything up to
// whitespace, quotes, or brackets. It is deliberately permissive and
// will capture trailing sentence punctuation as part of the URL.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\[\]]+`)

// InText returns the first URL in a single text, if any.
func InText(text string) (string, bool) {
	m := urlPattern.FindString(text)
	return m, m != ""
}

// FirstLink scans parts in order and returns the first URL found,
// stopping as soon as one matches.
func FirstLink(parts iter.Seq[decoder.Part]) (string, bool) {
	for p := range parts {
		if url, ok := InText(p.Text); ok {
			return url, true
		}
	}
	return "", false
}
