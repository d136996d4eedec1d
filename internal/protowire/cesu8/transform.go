package cesu8

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// ErrInvalidSurrogate is returned when a lone (unpaired) surrogate code
// point is encountered while decoding CESU-8 bytes to UTF-8.
var ErrInvalidSurrogate = errors.New("cesu8: invalid lone surrogate")

// ToUTF8 is a transform.Transformer decoding CESU-8 bytes into UTF-8.
type ToUTF8 struct{}

// NewDecoder returns a fresh ToUTF8 transformer.
func NewDecoder() transform.Transformer { return ToUTF8{} }

// Reset implements transform.Transformer.
func (ToUTF8) Reset() {}

// Transform implements transform.Transformer.
func (ToUTF8) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for len(src) > 0 {
		if !atEOF && !utf8.FullRune(src) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size <= 1 {
			if isSurrogateLead(src) {
				if len(src) < 3 {
					if !atEOF {
						return nDst, nSrc, transform.ErrShortSrc
					}
					return nDst, nSrc, ErrInvalidSurrogate
				}
				if len(src) < 6 || !isSurrogateTrail(src[3:]) {
					return nDst, nSrc, ErrInvalidSurrogate
				}
				cp, _ := DecodeRune(src)
				if cp == utf8.RuneError {
					return nDst, nSrc, ErrInvalidSurrogate
				}
				if len(dst)-nDst < utf8.UTFMax {
					return nDst, nSrc, transform.ErrShortDst
				}
				n := utf8.EncodeRune(dst[nDst:], cp)
				nDst += n
				nSrc += 6
				src = src[6:]
				continue
			}
			return nDst, nSrc, ErrInvalidSurrogate
		}
		if len(dst)-nDst < size {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], src[:size])
		nDst += size
		nSrc += size
		src = src[size:]
	}
	return nDst, nSrc, nil
}

func isSurrogateLead(p []byte) bool {
	return len(p) >= 3 && p[0] == 0xED && p[1] >= 0xA0 && p[1] <= 0xAF
}

func isSurrogateTrail(p []byte) bool {
	return len(p) >= 3 && p[0] == 0xED && p[1] >= 0xB0 && p[1] <= 0xBF
}

// DefaultDecoder is the CESU-8 decoder constructor used unless a session
// overrides it.
func DefaultDecoder() transform.Transformer { return ToUTF8{} }

// DefaultEncoder is the CESU-8 encoder constructor used unless a session
// overrides it.
func DefaultEncoder() transform.Transformer { return FromUTF8{} }

// FromUTF8 is a transform.Transformer encoding UTF-8 bytes into CESU-8.
type FromUTF8 struct{}

// NewEncoder returns a fresh FromUTF8 transformer.
func NewEncoder() transform.Transformer { return FromUTF8{} }

// Reset implements transform.Transformer.
func (FromUTF8) Reset() {}

// Transform implements transform.Transformer.
func (FromUTF8) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for len(src) > 0 {
		if !atEOF && !utf8.FullRune(src) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src)
		n := RuneLen(r)
		if n < 0 {
			r, n = utf8.RuneError, 3
		}
		if len(dst)-nDst < n {
			return nDst, nSrc, transform.ErrShortDst
		}
		EncodeRune(dst[nDst:], r)
		nDst += n
		nSrc += size
		src = src[size:]
	}
	return nDst, nSrc, nil
}
