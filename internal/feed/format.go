// Package feed formats RSS and Atom item strings for display.
package feed

import (
	"strings"

	"github.com/msgtext/entdecode/internal/entity"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Item is the displayable part of a feed entry.
type Item struct {
	Title   string
	Summary string
}

// droppedTags are removed from feed text, opening and closing forms alike.
var droppedTags = map[atom.Atom]bool{
	atom.I:    true,
	atom.Em:   true,
	atom.B:    true,
	atom.Nobr: true,
	atom.Wbr:  true,
}

// FormatString prepares a feed string for display.
//
// With replaceHTML, character references in text are decoded, <cite> tags
// become double quotes and simple inline formatting tags are removed. Any
// other markup is left as is. With replaceReturns, line breaks become
// spaces; otherwise they are normalized to "\n". Tabs always become
// spaces, and the result is trimmed.
func FormatString(s string, replaceHTML, replaceReturns bool) string {
	if replaceHTML {
		s = replaceMarkup(s)
	}

	var r *strings.Replacer
	if replaceReturns {
		r = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ")
	} else {
		r = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", " ")
	}
	return strings.TrimSpace(r.Replace(s))
}

// FormatItem formats an item's title on a single line and keeps the
// summary's line breaks.
func FormatItem(it Item) Item {
	return Item{
		Title:   FormatString(it.Title, true, true),
		Summary: FormatString(it.Summary, true, false),
	}
}

func replaceMarkup(s string) string {
	if !strings.ContainsAny(s, "&<") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()
		switch tt {
		case html.TextToken:
			sb.WriteString(entity.DecodeOrRaw(string(raw)))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Cite:
				sb.WriteByte('"')
			case droppedTags[a]:
			default:
				sb.Write(raw)
			}
		default:
			sb.Write(raw)
		}
	}
	return sb.String()
}
