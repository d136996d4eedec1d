// Package encoding implements the primitive byte-level codec the wire
// protocol is built on: fixed-width integers, length indicators, CESU-8
// string transcoding and padding.
package encoding

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"golang.org/x/text/transform"
)

const readScratchSize = 4096

// natOne is used when reconstructing two's-complement fixed-point values.
var natOne = big.NewInt(1)

const wordSize = 32 << (^big.Word(0) >> 63) / 8

// Decoder reads hdb wire primitives from an io.Reader.
//
// A Decoder never returns an error from its Read* methods directly: a
// failed read is sticky in err and surfaces via Error/ResetError so that
// callers can decode a whole part without per-field error checks, the
// same tradeoff the rest of the codec makes.
type Decoder struct {
	rd  io.Reader
	err error
	b   []byte
	tr  transform.Transformer
	cnt int
}

// NewDecoder returns a Decoder reading from rd. decoder, if non-nil,
// builds the CESU-8→UTF-8 transformer used by CESU8Bytes.
func NewDecoder(rd io.Reader, decoder func() transform.Transformer) *Decoder {
	d := &Decoder{rd: rd, b: make([]byte, readScratchSize)}
	if decoder != nil {
		d.tr = decoder()
	}
	return d
}

// ResetCnt resets the byte-read counter used to track part boundaries.
func (d *Decoder) ResetCnt() { d.cnt = 0 }

// Cnt returns the number of bytes read since the last ResetCnt.
func (d *Decoder) Cnt() int { return d.cnt }

// Error returns the sticky read error, if any.
func (d *Decoder) Error() error { return d.err }

// ResetError returns and clears the sticky read error.
func (d *Decoder) ResetError() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Decoder) readFull(buf []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n, err := io.ReadFull(d.rd, buf)
	d.cnt += n
	if err != nil {
		d.err = err
	}
	return n, d.err
}

// Skip discards cnt bytes.
func (d *Decoder) Skip(cnt int) {
	for n := 0; n < cnt; {
		to := cnt - n
		if to > readScratchSize {
			to = readScratchSize
		}
		m, err := d.readFull(d.b[:to])
		n += m
		if err != nil {
			return
		}
	}
}

// Byte reads a single byte.
func (d *Decoder) Byte() byte {
	if _, err := d.readFull(d.b[:1]); err != nil {
		return 0
	}
	return d.b[0]
}

// Bytes reads len(p) bytes into p.
func (d *Decoder) Bytes(p []byte) { d.readFull(p) }

// Bool reads a boolean byte.
func (d *Decoder) Bool() bool { return d.Byte() != 0 }

// Int8 reads a signed byte.
func (d *Decoder) Int8() int8 { return int8(d.Byte()) }

// Int16 reads a little-endian int16.
func (d *Decoder) Int16() int16 { return int16(d.Uint16()) }

// Uint16 reads a little-endian uint16.
func (d *Decoder) Uint16() uint16 {
	if _, err := d.readFull(d.b[:2]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(d.b[:2])
}

// Int16BE reads a big-endian int16 (used only by the initial handshake).
func (d *Decoder) Int16BE() int16 {
	if _, err := d.readFull(d.b[:2]); err != nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(d.b[:2]))
}

// Int32 reads a little-endian int32.
func (d *Decoder) Int32() int32 { return int32(d.Uint32()) }

// Uint32 reads a little-endian uint32.
func (d *Decoder) Uint32() uint32 {
	if _, err := d.readFull(d.b[:4]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(d.b[:4])
}

// Int64 reads a little-endian int64.
func (d *Decoder) Int64() int64 { return int64(d.Uint64()) }

// Uint64 reads a little-endian uint64.
func (d *Decoder) Uint64() uint64 {
	if _, err := d.readFull(d.b[:8]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(d.b[:8])
}

// Float32 reads an IEEE-754 little-endian float32.
func (d *Decoder) Float32() float32 {
	if _, err := d.readFull(d.b[:4]); err != nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(d.b[:4]))
}

// Float64 reads an IEEE-754 little-endian float64.
func (d *Decoder) Float64() float64 {
	if _, err := d.readFull(d.b[:8]); err != nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(d.b[:8]))
}

// LengthIndicator reads the general-dialect length indicator: 0-245 is a
// literal length, 0xF6 precedes a 2-byte LE length, 0xF7 precedes a
// 4-byte LE length. ok is false for the NULL sentinel (0xFF).
func (d *Decoder) LengthIndicator() (n int, ok bool) {
	b := d.Byte()
	switch {
	case b == 0xFF:
		return 0, false
	case b == 0xF7:
		return int(d.Uint32()), true
	case b == 0xF6:
		return int(d.Uint16()), true
	default:
		return int(b), true
	}
}

// AuthLengthIndicator reads the auth-field dialect length indicator used
// inside Authentication sub-parameter lists: 0xFF precedes a 2-byte
// big-endian length.
func (d *Decoder) AuthLengthIndicator() int {
	b := d.Byte()
	if b == 0xFF {
		if _, err := d.readFull(d.b[:2]); err != nil {
			return 0
		}
		return int(binary.BigEndian.Uint16(d.b[:2]))
	}
	return int(b)
}

// Decimal reads the legacy 16-byte decimal format and returns its
// mantissa and decimal exponent. A nil mantissa with no error denotes
// the decimal NULL sentinel.
func (d *Decoder) Decimal() (*big.Int, int, error) {
	const decSize = 16
	const bias = 6176

	bs := make([]byte, decSize)
	if _, err := d.readFull(bs); err != nil {
		return nil, 0, nil
	}

	if (bs[15] & 0x70) == 0x70 { // NULL: bits 4,5,6 set
		return nil, 0, nil
	}
	if (bs[15] & 0x60) == 0x60 {
		return nil, 0, errDecimalSpecial
	}

	neg := (bs[15] & 0x80) != 0
	exp := int((((uint16(bs[15])<<8)|uint16(bs[14]))<<1)>>2) - bias

	bs[14] &= 0x01 // strip sign/exponent bits, keep the mantissa bit

	m := decodeTwosComplementMagnitude(bs[:15], false) // byte 15 holds only sign/exponent bits
	if neg {
		m.Neg(m)
	}
	return m, exp, nil
}

// Fixed reads a little-endian two's-complement fixed-point mantissa of
// the given byte width (used for FIXED8/FIXED12/FIXED16).
func (d *Decoder) Fixed(size int) *big.Int {
	bs := make([]byte, size)
	if _, err := d.readFull(bs); err != nil {
		return nil
	}
	neg := (bs[size-1] & 0x80) != 0
	m := decodeTwosComplementMagnitude(bs, neg)
	if neg {
		m.Add(m, natOne)
		m.Neg(m)
	}
	return m
}

// decodeTwosComplementMagnitude interprets bs (little-endian) as the
// magnitude bits of a (possibly inverted, for negative two's-complement)
// value and returns it as a big.Int.
func decodeTwosComplementMagnitude(bs []byte, invert bool) *big.Int {
	msb := len(bs) - 1
	for msb > 0 && bs[msb] == 0 {
		msb--
	}
	numWords := msb/wordSize + 1
	ws := make([]big.Word, numWords)
	for i := 0; i <= msb; i++ {
		b := bs[i]
		if invert {
			b = ^b
		}
		ws[i/wordSize] |= big.Word(b) << uint(i%wordSize*8)
	}
	return new(big.Int).SetBits(ws)
}

// CESU8Bytes reads a size-byte CESU-8 sequence and returns it transcoded
// to UTF-8.
func (d *Decoder) CESU8Bytes(size int) ([]byte, error) {
	if d.err != nil {
		return nil, nil
	}
	p := make([]byte, size)
	if _, err := d.readFull(p); err != nil {
		return nil, nil
	}
	if d.tr == nil {
		return p, nil
	}
	d.tr.Reset()
	r, _, err := transform.Bytes(d.tr, p)
	return r, err
}
