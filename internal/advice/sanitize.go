package advice

import "strings"

// StripEmphasis removes Markdown emphasis markers from generated text.
// The prompt asks the model to avoid them, but models slip, so the text
// is cleaned regardless before display.
func StripEmphasis(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '*' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
