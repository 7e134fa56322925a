package entity

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// NewDecoder returns a Transformer that decodes character references in a
// byte stream. Unlike Decode it has no "nothing decoded" signal: input
// without references is copied through unchanged.
func NewDecoder() transform.Transformer {
	return decoder{}
}

type decoder struct{}

func (decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '&' {
			if nDst == len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		r, n, st := parseRef(src[nSrc:])
		if st == refShort && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if st != refOK {
			if nDst == len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '&'
			nDst++
			nSrc++
			continue
		}

		if len(dst)-nDst < utf8.RuneLen(r) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += n
	}
	return nDst, nSrc, nil
}

func (decoder) Reset() {}
