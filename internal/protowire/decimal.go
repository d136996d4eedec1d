package protowire

import (
	"errors"
	"math/big"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// ErrDecimalExponentRange reports an exponent outside [-6143, 6144] for
// the legacy 16-byte decimal wire format.
var ErrDecimalExponentRange = errors.New("protowire: decimal exponent out of range")

// Decimal is a fixed-precision signed decimal: value == Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int
}

var ten = big.NewInt(10)

// normalized returns a copy of d with trailing zero digits folded into
// Scale: HANA's legacy decimal format rejects a mantissa that is a
// multiple of 10.
func (d Decimal) normalized() Decimal {
	if d.Unscaled == nil || d.Unscaled.Sign() == 0 {
		return Decimal{Unscaled: big.NewInt(0), Scale: 0}
	}
	m := new(big.Int).Set(d.Unscaled)
	scale := d.Scale
	q, r := new(big.Int), new(big.Int)
	for scale > -6143 {
		q.QuoRem(m, ten, r)
		if r.Sign() != 0 {
			break
		}
		m.Set(q)
		scale--
	}
	return Decimal{Unscaled: m, Scale: scale}
}

// EncodeLegacy writes d in the legacy 16-byte decimal format.
func EncodeLegacy(enc *encoding.Encoder, d Decimal) error {
	n := d.normalized()
	exp := -n.Scale
	if exp < -6143 || exp > 6144 {
		return ErrDecimalExponentRange
	}
	return enc.Decimal(n.Unscaled, exp)
}

// EncodeLegacyNull writes the legacy decimal NULL sentinel.
func EncodeLegacyNull(enc *encoding.Encoder) { enc.DecimalNull() }

// DecodeLegacy reads a legacy-format decimal. ok is false for SQL NULL.
func DecodeLegacy(dec *encoding.Decoder) (d Decimal, ok bool, err error) {
	m, exp, err := dec.Decimal()
	if err != nil {
		return Decimal{}, false, err
	}
	if m == nil {
		return Decimal{}, false, nil
	}
	return Decimal{Unscaled: m, Scale: -exp}, true, nil
}

// FixedSize returns the wire byte width (8, 12 or 16) for a FIXED
// decimal of the given precision, or 0 if precision doesn't map to a
// supported fixed width.
func FixedSize(precision int) int {
	switch {
	case precision <= 18:
		return 8
	case precision <= 28:
		return 12
	case precision <= 38:
		return 16
	default:
		return 0
	}
}

// EncodeFixed writes d.Unscaled as a size-byte little-endian two's
// complement integer (FIXED8/FIXED12/FIXED16); d.Scale is carried out of
// band via column metadata, not the wire form.
func EncodeFixed(enc *encoding.Encoder, d Decimal, size int) { enc.Fixed(d.Unscaled, size) }

// DecodeFixed reads a size-byte FIXED decimal with the externally
// supplied scale.
func DecodeFixed(dec *encoding.Decoder, size, scale int) Decimal {
	return Decimal{Unscaled: dec.Fixed(size), Scale: scale}
}
