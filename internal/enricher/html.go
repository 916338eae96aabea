package enricher

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripHTML returns the text content of an HTML fragment. Text nodes are
// trimmed and joined with single spaces, and runs of ASCII whitespace collapse
// to one space. A non-breaking space is trimmed at the edges of a text node
// but kept inside it.
// Malformed markup is tolerated. Script and style bodies are dropped.
func StripHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(raw))
	var parts []string
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF; strings.Reader never fails otherwise.
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if isRawTextElement(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if isRawTextElement(z) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := strings.Join(strings.FieldsFunc(strings.TrimSpace(string(z.Text())), isASCIISpace), " "); text != "" {
				parts = append(parts, text)
			}
		}
	}
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isRawTextElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}
