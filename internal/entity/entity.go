// Package entity decodes SGML/HTML character references (&name;, &#NNN;,
// &#xHHH;) found in mail headers, bodies and feed content.
//
// Decoding is a single left-to-right pass. A reference that fails to parse
// is left in place: only its '&' is copied and scanning resumes right after
// it, so a valid reference further along is still found.
package entity

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxRefLen is the longest reference, from '&' through ';', that is
// decoded. Longer candidates are left as literal text.
const maxRefLen = 32

type refStatus int

const (
	refMalformed refStatus = iota
	refOK
	// refShort means the input ended before the reference could be
	// classified.
	refShort
)

// Decode replaces every well-formed character reference in src with its
// UTF-8 encoding and copies all other bytes unchanged.
//
// The boolean result is false when src is nil or when no reference was
// decoded; callers use it to decide whether to fall back to the raw text.
// The returned string never aliases src.
func Decode(src []byte) (string, bool) {
	if src == nil {
		return "", false
	}
	i := bytes.IndexByte(src, '&')
	if i < 0 {
		return "", false
	}

	var sb strings.Builder
	sb.Grow(len(src))
	sb.Write(src[:i])

	decoded := false
	for i < len(src) {
		r, n, st := parseRef(src[i:])
		if st == refOK {
			sb.WriteRune(r)
			i += n
			decoded = true
		} else {
			sb.WriteByte('&')
			i++
		}

		j := bytes.IndexByte(src[i:], '&')
		if j < 0 {
			sb.Write(src[i:])
			break
		}
		sb.Write(src[i : i+j])
		i += j
	}

	if !decoded {
		return "", false
	}
	return sb.String(), true
}

// DecodeString is Decode for string input.
func DecodeString(s string) (string, bool) {
	if strings.IndexByte(s, '&') < 0 {
		return "", false
	}
	return Decode([]byte(s))
}

// DecodeOrRaw returns s with references decoded, or s itself when nothing
// was decoded.
func DecodeOrRaw(s string) string {
	if out, ok := DecodeString(s); ok {
		return out
	}
	return s
}

// parseRef parses the reference at the start of b, where b[0] == '&'.
// On success it returns the code point and the number of bytes consumed,
// including the terminating ';'.
//
// A reference longer than maxRefLen bytes is malformed whatever it holds, so
// the outcome never depends on how much input follows it.
func parseRef(b []byte) (rune, int, refStatus) {
	if len(b) > maxRefLen {
		b = b[:maxRefLen]
	}
	if len(b) < 2 {
		return 0, 0, refShort
	}
	var (
		r  rune
		n  int
		st refStatus
	)
	if b[1] == '#' {
		r, n, st = parseNumeric(b)
	} else {
		r, n, st = parseNamed(b)
	}
	if st == refShort && len(b) == maxRefLen {
		return 0, 0, refMalformed
	}
	return r, n, st
}

func parseNamed(b []byte) (rune, int, refStatus) {
	i := 1
	for i < len(b) && isAlnum(b[i]) {
		i++
		if i-1 > maxNameLen {
			return 0, 0, refMalformed
		}
	}
	if i == len(b) {
		return 0, 0, refShort
	}
	if i == 1 || b[i] != ';' {
		return 0, 0, refMalformed
	}
	r, ok := Lookup(string(b[1:i]))
	if !ok {
		return 0, 0, refMalformed
	}
	return r, i + 1, refOK
}

func parseNumeric(b []byte) (rune, int, refStatus) {
	i := 2
	base := uint32(10)
	if i < len(b) && (b[i] == 'x' || b[i] == 'X') {
		base = 16
		i++
	}
	start := i
	var cp uint32
	for ; i < len(b); i++ {
		d, ok := digitValue(b[i], base)
		if !ok {
			break
		}
		// Stop accumulating once out of range; the run is still consumed.
		if cp <= unicode.MaxRune {
			cp = cp*base + d
		}
	}
	if i == len(b) {
		return 0, 0, refShort
	}
	if i == start || b[i] != ';' {
		return 0, 0, refMalformed
	}
	if cp > unicode.MaxRune || (cp >= 0xD800 && cp <= 0xDFFF) {
		return 0, 0, refMalformed
	}
	r := rune(cp)
	if r < 0x20 {
		r = utf8.RuneError
	}
	return r, i + 1, refOK
}

func digitValue(c byte, base uint32) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case base == 16 && 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case base == 16 && 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
