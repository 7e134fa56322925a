// Package textutil normalizes raw message and feed text to UTF-8 before
// character references are decoded.
package textutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// ErrUnknownCharset is returned by ToUTF8 for charset names it cannot map.
var ErrUnknownCharset = errors.New("unknown charset")

// fallbackEncodings are tried in order when detection is inconclusive.
// Single-byte Western encodings come first since they dominate mail and feeds.
var fallbackEncodings = []encoding.Encoding{
	charmap.Windows1252,
	charmap.ISO8859_1,
	charmap.ISO8859_15,
	japanese.ShiftJIS,
	japanese.EUCJP,
	korean.EUCKR,
	simplifiedchinese.GBK,
	traditionalchinese.Big5,
}

// ToUTF8 converts data to UTF-8. An empty charset or "auto" runs detection
// via EnsureUTF8; "utf-8" only replaces invalid bytes.
func ToUTF8(data []byte, charset string) (string, error) {
	switch strings.ToLower(charset) {
	case "", "auto":
		return EnsureUTF8(string(data)), nil
	case "utf-8", "utf8":
		return SanitizeUTF8(string(data)), nil
	}
	enc := GetEncodingByName(charset)
	if enc == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, charset)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return SanitizeUTF8(string(decoded)), nil
}

// EnsureUTF8 returns s unchanged when it is valid UTF-8. Otherwise it tries
// charset detection, then the common mail encodings, and finally replaces
// invalid bytes.
func EnsureUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	data := []byte(s)

	// Detection is unreliable on short input, so accept a lower confidence there.
	minConfidence := 30
	if len(data) > 50 {
		minConfidence = 50
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil && result.Confidence >= minConfidence {
		if enc := GetEncodingByName(result.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
				return string(decoded)
			}
		}
	}

	for _, enc := range fallbackEncodings {
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	return SanitizeUTF8(s)
}

// SanitizeUTF8 replaces each run of invalid UTF-8 bytes with U+FFFD.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}

// GetEncodingByName returns the encoding for an IANA charset name or common
// alias, or nil if it is not supported. Matching is case-insensitive.
func GetEncodingByName(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS
	case "euc-jp", "eucjp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "euc-kr", "euckr":
		return korean.EUCKR
	case "gb2312", "gbk":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "big5", "big-5":
		return traditionalchinese.Big5
	case "koi8-r":
		return charmap.KOI8R
	case "koi8-u":
		return charmap.KOI8U
	default:
		return nil
	}
}
