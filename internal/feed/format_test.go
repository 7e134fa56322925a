package feed

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		replaceHTML    bool
		replaceReturns bool
		want           string
	}{
		{"plain", "Hello", true, true, "Hello"},
		{"empty", "", true, true, ""},
		{"trimmed", "  \tpadded\r\n", true, true, "padded"},
		{"entities", "Tom &amp; Jerry&#39;s &hellip;", true, false, "Tom & Jerry's …"},
		{"unknown reference kept", "a &bogus; b", true, false, "a &bogus; b"},
		{"cite to quotes", "<cite>Dune</cite> review", true, false, `"Dune" review`},
		{"inline tags removed", "<b>bold</b> <i>it</i> <em>em</em> no<nobr>br</nobr>eak<wbr>", true, false, "bold it em nobreak"},
		{"other markup kept", `<a href="x">link</a>`, true, false, `<a href="x">link</a>`},
		{"markup untouched without html", "<b>x</b> &amp;", false, false, "<b>x</b> &amp;"},
		{"returns to spaces", "line1\r\nline2\nline3\rline4", false, true, "line1 line2 line3 line4"},
		{"returns normalized", "line1\r\nline2\rline3", false, false, "line1\nline2\nline3"},
		{"tabs", "a\tb", false, false, "a b"},
		{"decoded lt stays text", "&lt;b&gt;", true, false, "<b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatString(tt.input, tt.replaceHTML, tt.replaceReturns)
			if got != tt.want {
				t.Errorf("FormatString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatItem(t *testing.T) {
	got := FormatItem(Item{
		Title:   "Release &ndash; v2\n",
		Summary: "<p>First&nbsp;line</p>\r\n<b>Second</b>\tline",
	})
	want := Item{
		Title:   "Release – v2",
		Summary: "<p>First\u00a0line</p>\nSecond line",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatItem() mismatch (-want +got):\n%s", diff)
	}
}
