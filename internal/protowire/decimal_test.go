package protowire

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

func TestDecimalLegacyRoundTrip(t *testing.T) {
	cases := []Decimal{
		{Unscaled: big.NewInt(0), Scale: 0},
		{Unscaled: big.NewInt(12345), Scale: 2},
		{Unscaled: big.NewInt(-987), Scale: 5},
		{Unscaled: big.NewInt(100), Scale: 0}, // normalizes to 1, scale -2
	}

	for _, c := range cases {
		var buf bytes.Buffer
		enc := encoding.NewEncoder(&buf, nil)
		if err := EncodeLegacy(enc, c); err != nil {
			t.Fatalf("encode %v: %v", c, err)
		}

		dec := encoding.NewDecoder(&buf, nil)
		got, ok, err := DecodeLegacy(dec)
		if err != nil {
			t.Fatalf("decode %v: %v", c, err)
		}
		if !ok {
			t.Fatalf("decode %v: unexpected NULL", c)
		}

		want := c.normalized()
		if got.Unscaled.Cmp(want.Unscaled) != 0 || got.Scale != want.Scale {
			t.Fatalf("roundtrip %v: got unscaled %s scale %d, want unscaled %s scale %d",
				c, got.Unscaled, got.Scale, want.Unscaled, want.Scale)
		}
	}
}

func TestDecimalLegacyNull(t *testing.T) {
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)
	EncodeLegacyNull(enc)

	dec := encoding.NewDecoder(&buf, nil)
	_, ok, err := DecodeLegacy(dec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok {
		t.Fatalf("expected NULL, got a value")
	}
}

func TestFixedRoundTrip(t *testing.T) {
	sizes := []int{8, 12, 16}
	values := []*big.Int{big.NewInt(0), big.NewInt(123456789), big.NewInt(-42)}

	for _, size := range sizes {
		for _, v := range values {
			var buf bytes.Buffer
			enc := encoding.NewEncoder(&buf, nil)
			EncodeFixed(enc, Decimal{Unscaled: v, Scale: 2}, size)

			dec := encoding.NewDecoder(&buf, nil)
			got := DecodeFixed(dec, size, 2)
			if got.Unscaled.Cmp(v) != 0 {
				t.Fatalf("size %d value %s: got %s", size, v, got.Unscaled)
			}
			if got.Scale != 2 {
				t.Fatalf("size %d value %s: scale %d, want 2", size, v, got.Scale)
			}
		}
	}
}

func TestFixedSize(t *testing.T) {
	cases := []struct {
		precision int
		size      int
	}{
		{1, 8}, {18, 8}, {19, 12}, {28, 12}, {29, 16}, {38, 16}, {39, 0},
	}
	for _, c := range cases {
		if got := FixedSize(c.precision); got != c.size {
			t.Fatalf("FixedSize(%d) = %d, want %d", c.precision, got, c.size)
		}
	}
}
