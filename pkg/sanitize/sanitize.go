package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxPasses bounds how many layers of entity-encoded markup Text unwraps.
const maxPasses = 8

// Text strips every markup tag from raw and returns the remaining text with
// entities decoded. Content of script, style and similar raw-text elements
// is dropped entirely. Decoded entities that form new tags are stripped in
// turn, so Text(Text(s)) == Text(s).
func Text(raw string) string {
	out := raw
	for i := 0; i < maxPasses; i++ {
		next := strip(out)
		if next == out {
			return out
		}
		out = next
	}
	return html.EscapeString(out)
}

func strip(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var (
		b       strings.Builder
		skipped int
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the text so far is the result.
			return b.String()
		case html.StartTagToken:
			if dropsContent(tokenizer.Token().DataAtom) {
				skipped++
			}
		case html.EndTagToken:
			if dropsContent(tokenizer.Token().DataAtom) && skipped > 0 {
				skipped--
			}
		case html.TextToken:
			if skipped == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func dropsContent(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Iframe, atom.Noscript, atom.Template, atom.Textarea, atom.Title:
		return true
	default:
		return false
	}
}
