package mime

import (
	"strings"

	"github.com/msgtext/entdecode/internal/entity"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags produce a line break when opened or closed.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
}

// skipTags have their content dropped entirely.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

// StripHTML converts an HTML body to plain text: tags are removed, block
// elements become line breaks, character references are decoded and
// whitespace is collapsed.
//
// Preformatted content loses its spacing; this is for previews, not
// faithful rendering.
func StripHTML(rawHTML string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	skip := 0

loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, or a tokenizer error we cannot recover from either way.
			break loop
		case html.TextToken:
			if skip == 0 {
				sb.WriteString(entity.DecodeOrRaw(string(z.Raw())))
			}
		case html.StartTagToken:
			a := tagAtom(z)
			if skipTags[a] {
				skip++
			} else if blockTags[a] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			a := tagAtom(z)
			if skipTags[a] {
				if skip > 0 {
					skip--
				}
			} else if blockTags[a] {
				sb.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			if blockTags[tagAtom(z)] {
				sb.WriteByte('\n')
			}
		}
	}

	return normalizeWhitespace(sb.String())
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	out := lines[:0]
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
