// Package text cleans article bodies and splits them into word tokens.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// tagPattern matches a single angle-bracket markup tag.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalize strips markup tags and every character outside letters, digits,
// whitespace, apostrophe and slash. Removed tags and characters become a
// space so adjacent words are never merged. Whitespace runs collapse to a
// single space.
//
// The result is never longer than the input and never contains a tag.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := tagPattern.ReplaceAllString(raw, " ")

	var sb strings.Builder
	sb.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Mn, r), r == '\'', r == '/':
			sb.WriteRune(r)
		case r == '’' || r == '‘':
			// typographic apostrophes fold to ASCII
			sb.WriteByte('\'')
		default:
			// whitespace and dropped punctuation both separate words
			sb.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// HTMLToText extracts the visible text of an HTML fragment, keeping block
// elements separated by whitespace. Unparseable input is returned unchanged.
func HTMLToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + html + "</body>"))
	if err != nil {
		return html
	}

	doc.Find("script, style, figure, aside").Remove()

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}
