package render

import "strings"

// escaper replaces markup-significant characters. '@' becomes a numeric
// reference so the documentation tool never sees an inline tag.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"@", "&#064;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape makes text safe for embedding into an HTML documentation comment.
// Each character is replaced at most once, so ampersands introduced by the
// other substitutions are never escaped again.
func Escape(text string) string {
	return escaper.Replace(text)
}

// entities are the sequences Escape produces. The tokenizer copies them
// through untouched.
var entities = []string{"&amp;", "&#064;", "&lt;", "&gt;"}

func entityAt(s string, i int) int {
	if s[i] != '&' {
		return 0
	}
	for _, e := range entities {
		if strings.HasPrefix(s[i:], e) {
			return len(e)
		}
	}
	return 0
}
