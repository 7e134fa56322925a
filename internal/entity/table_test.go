package entity

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTableSorted(t *testing.T) {
	if !slices.IsSortedFunc(refs[:], func(a, b namedRef) int {
		return strings.Compare(a.name, b.name)
	}) {
		t.Fatal("refs must be sorted by name for binary search")
	}
	for i := 1; i < len(refs); i++ {
		if refs[i].name == refs[i-1].name {
			t.Errorf("duplicate name %q", refs[i].name)
		}
	}
}

func TestTableShape(t *testing.T) {
	if Len() != 254 {
		t.Errorf("Len() = %d, want 254 (HTML 4.01 set plus apos and squot)", Len())
	}
	longest := 0
	for name, r := range All() {
		longest = max(longest, len(name))
		if !utf8.ValidRune(r) {
			t.Errorf("%s maps to invalid rune %U", name, r)
		}
		for i := 0; i < len(name); i++ {
			if !isAlnum(name[i]) {
				t.Errorf("%s contains non-alphanumeric byte %q", name, name[i])
			}
		}
	}
	if longest != maxNameLen {
		t.Errorf("longest name = %d, maxNameLen = %d", longest, maxNameLen)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		want   rune
		wantOK bool
	}{
		{"Aacute", 'Á', true},
		{"aacute", 'á', true},
		{"amp", '&', true},
		{"lt", '<', true},
		{"gt", '>', true},
		{"quot", '"', true},
		{"nbsp", '\u00a0', true},
		{"AElig", 'Æ', true},
		{"Yuml", 'Ÿ', true},
		{"yuml", 'ÿ', true},
		{"Dagger", '‡', true},
		{"dagger", '†', true},
		{"hellip", '…', true},
		{"trade", '™', true},
		{"diams", '♦', true},
		{"zwnj", '\u200c', true},
		{"sup", '⊃', true},
		{"sup1", '¹', true},
		{"Amp", 0, false},
		{"", 0, false},
		{"toolongname", 0, false},
		{"unknown", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = %U, %v, want %U, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAll_StopsEarly(t *testing.T) {
	n := 0
	for range All() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d entries, want 3", n)
	}
}
