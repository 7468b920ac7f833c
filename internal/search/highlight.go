package search

import (
	"html"
	"strings"
	"unicode"
)

// Highlight HTML-escapes text and wraps each case-insensitive occurrence of
// term in <mark>. The result is safe to embed in HTML.
func Highlight(text, term string) string {
	needle := []rune(strings.ToLower(strings.TrimSpace(term)))
	if len(needle) == 0 {
		return html.EscapeString(text)
	}

	runes := []rune(text)
	var sb strings.Builder
	plain := 0
	for i := 0; i+len(needle) <= len(runes); {
		if !matchAt(runes, i, needle) {
			i++
			continue
		}
		sb.WriteString(html.EscapeString(string(runes[plain:i])))
		sb.WriteString("<mark>")
		sb.WriteString(html.EscapeString(string(runes[i : i+len(needle)])))
		sb.WriteString("</mark>")
		i += len(needle)
		plain = i
	}
	sb.WriteString(html.EscapeString(string(runes[plain:])))
	return sb.String()
}

func matchAt(runes []rune, i int, needle []rune) bool {
	for j, r := range needle {
		if unicode.ToLower(runes[i+j]) != r {
			return false
		}
	}
	return true
}
