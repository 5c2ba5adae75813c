// Package normalize turns raw forum markup into canonical plain text.
package normalize

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

var (
	paragraphTag = regexp.MustCompile(`(?i)<p(\s[^>]*)?/?>`)
	breakTag     = regexp.MustCompile(`(?i)<br\s*/?>`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	manySpaces   = regexp.MustCompile(` {2,}`)
)

// Clean decodes entities, turns paragraph and line-break markup into newlines,
// strips every other tag and collapses whitespace. It never fails.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := html.UnescapeString(raw)
	text = paragraphTag.ReplaceAllString(text, "\n")
	text = breakTag.ReplaceAllString(text, "\n")
	text = stripTags(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = manySpaces.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripTags keeps only the text content of markup. Raw text is kept as is,
// entities were already decoded once and must not be decoded twice.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce.
			return b.String()
		case xhtml.TextToken:
			b.Write(z.Raw())
		}
	}
}
