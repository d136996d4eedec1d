package encoding

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"golang.org/x/text/transform"
)

const writeScratchSize = 4096

// Encoder writes hdb wire primitives to an io.Writer.
type Encoder struct {
	wr  io.Writer
	err error
	b   [writeScratchSize]byte
	tr  transform.Transformer
}

// NewEncoder returns an Encoder writing to wr. encoder, if non-nil,
// builds the UTF-8→CESU-8 transformer used by CESU8Bytes.
func NewEncoder(wr io.Writer, encoder func() transform.Transformer) *Encoder {
	e := &Encoder{wr: wr}
	if encoder != nil {
		e.tr = encoder()
	}
	return e
}

// Error returns the sticky write error, if any.
func (e *Encoder) Error() error { return e.err }

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.wr.Write(p); err != nil {
		e.err = err
	}
}

// Zeroes writes cnt zero bytes, used for part/segment padding and filler fields.
func (e *Encoder) Zeroes(cnt int) {
	for cnt > 0 {
		n := cnt
		if n > writeScratchSize {
			n = writeScratchSize
		}
		var zero [writeScratchSize]byte
		e.write(zero[:n])
		cnt -= n
	}
}

// Bytes writes p verbatim.
func (e *Encoder) Bytes(p []byte) { e.write(p) }

// Byte writes a single byte.
func (e *Encoder) Byte(b byte) { e.b[0] = b; e.write(e.b[:1]) }

// Bool writes a boolean as a single byte.
func (e *Encoder) Bool(v bool) {
	if v {
		e.Byte(1)
	} else {
		e.Byte(0)
	}
}

// Int8 writes a signed byte.
func (e *Encoder) Int8(i int8) { e.Byte(byte(i)) }

// Int16 writes a little-endian int16.
func (e *Encoder) Int16(i int16) { e.Uint16(uint16(i)) }

// Uint16 writes a little-endian uint16.
func (e *Encoder) Uint16(i uint16) {
	binary.LittleEndian.PutUint16(e.b[:2], i)
	e.write(e.b[:2])
}

// Int16BE writes a big-endian int16, used only by the initial handshake.
func (e *Encoder) Int16BE(i int16) {
	e.b[0], e.b[1] = byte(uint16(i)>>8), byte(i)
	e.write(e.b[:2])
}

// Int32 writes a little-endian int32.
func (e *Encoder) Int32(i int32) { e.Uint32(uint32(i)) }

// Uint32 writes a little-endian uint32.
func (e *Encoder) Uint32(i uint32) {
	binary.LittleEndian.PutUint32(e.b[:4], i)
	e.write(e.b[:4])
}

// Int64 writes a little-endian int64.
func (e *Encoder) Int64(i int64) { e.Uint64(uint64(i)) }

// Uint64 writes a little-endian uint64.
func (e *Encoder) Uint64(i uint64) {
	binary.LittleEndian.PutUint64(e.b[:8], i)
	e.write(e.b[:8])
}

// Float32 writes an IEEE-754 little-endian float32.
func (e *Encoder) Float32(f float32) { e.Uint32(math.Float32bits(f)) }

// Float64 writes an IEEE-754 little-endian float64.
func (e *Encoder) Float64(f float64) { e.Uint64(math.Float64bits(f)) }

// String writes s verbatim (already-encoded bytes, e.g. ASCII command text).
func (e *Encoder) String(s string) { e.write([]byte(s)) }

// LengthIndicator writes the general-dialect length indicator for n,
// choosing the narrowest representation (1, 3 or 5 bytes).
func (e *Encoder) LengthIndicator(n int) {
	switch {
	case n <= 245:
		e.Byte(byte(n))
	case n <= math.MaxUint16:
		e.Byte(0xF6)
		e.Uint16(uint16(n))
	default:
		e.Byte(0xF7)
		e.Uint32(uint32(n))
	}
}

// LengthIndicatorNull writes the general-dialect NULL sentinel.
func (e *Encoder) LengthIndicatorNull() { e.Byte(0xFF) }

// AuthLengthIndicator writes the auth-field dialect length indicator used
// inside Authentication sub-parameter lists: a literal byte for n<255,
// otherwise 0xFF followed by a 2-byte big-endian length.
func (e *Encoder) AuthLengthIndicator(n int) {
	if n < 0xFF {
		e.Byte(byte(n))
		return
	}
	e.Byte(0xFF)
	e.b[0], e.b[1] = byte(n>>8), byte(n)
	e.write(e.b[:2])
}

// Decimal writes m/10^-exp in the legacy 16-byte decimal wire format.
func (e *Encoder) Decimal(m *big.Int, exp int) error {
	const bias = 6176
	if exp < -6143 || exp > 6144 {
		return errDecimalExponentRange
	}

	neg := m.Sign() < 0
	mag := new(big.Int).Abs(m)
	bs := make([]byte, 16)
	encodeMagnitudeLE(mag, bs[:15])

	biased := uint16(exp + bias)
	bs[14] |= byte(biased<<1) & 0xFE
	bs[15] = byte(biased >> 7)
	if neg {
		bs[15] |= 0x80
	}
	e.Bytes(bs)
	return nil
}

// DecimalNull writes the legacy decimal NULL sentinel.
func (e *Encoder) DecimalNull() {
	var bs [16]byte
	bs[15] = 0x70
	e.Bytes(bs[:])
}

// Fixed writes m as a little-endian two's-complement integer of the
// given byte width, sign-extending or truncating as needed (used for
// FIXED8/FIXED12/FIXED16).
func (e *Encoder) Fixed(m *big.Int, size int) {
	bs := make([]byte, size)
	if m.Sign() < 0 {
		mag := new(big.Int).Abs(m)
		mag.Sub(mag, natOne)
		encodeMagnitudeLE(mag, bs)
		for i := range bs {
			bs[i] = ^bs[i]
		}
	} else {
		encodeMagnitudeLE(m, bs)
	}
	e.Bytes(bs)
}

func encodeMagnitudeLE(m *big.Int, bs []byte) {
	bits := m.Bits()
	for i := range bs {
		bs[i] = 0
	}
	for wi, w := range bits {
		for bi := 0; bi < wordSize; bi++ {
			idx := wi*wordSize + bi
			if idx >= len(bs) {
				return
			}
			bs[idx] = byte(w >> uint(bi*8))
		}
	}
}

// CESU8Bytes writes p (UTF-8) transcoded to CESU-8 and returns the
// number of CESU-8 bytes written.
func (e *Encoder) CESU8Bytes(p []byte) int {
	if e.err != nil {
		return 0
	}
	if e.tr == nil {
		e.write(p)
		return len(p)
	}
	e.tr.Reset()
	cnt := 0
	i := 0
	for i < len(p) {
		m, n, err := e.tr.Transform(e.b[:], p[i:], true)
		if err != nil && err != transform.ErrShortDst {
			e.err = err
			return cnt
		}
		if m == 0 {
			e.err = transform.ErrShortDst
			return cnt
		}
		e.write(e.b[:m])
		cnt += m
		i += n
	}
	return cnt
}

// CESU8String is CESU8Bytes for a string argument.
func (e *Encoder) CESU8String(s string) int { return e.CESU8Bytes([]byte(s)) }

