package driver

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

func encodedSize(t *testing.T, field *protowire.FieldMetadata, v any) int {
	t.Helper()
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)
	if err := encodeParamValue(enc, field, v); err != nil {
		t.Fatalf("encodeParamValue(%v): %v", v, err)
	}
	return buf.Len()
}

func TestParamValueSizeMatchesEncoding(t *testing.T) {
	cases := []struct {
		name  string
		field *protowire.FieldMetadata
		value any
	}{
		{"tinyint", &protowire.FieldMetadata{TypeCode: protowire.TCTinyint}, int64(7)},
		{"smallint", &protowire.FieldMetadata{TypeCode: protowire.TCSmallint}, int64(-1000)},
		{"integer", &protowire.FieldMetadata{TypeCode: protowire.TCInteger}, int64(123456)},
		{"bigint", &protowire.FieldMetadata{TypeCode: protowire.TCBigint}, int64(-123456789012)},
		{"real", &protowire.FieldMetadata{TypeCode: protowire.TCReal}, float64(3.5)},
		{"double", &protowire.FieldMetadata{TypeCode: protowire.TCDouble}, float64(3.14159)},
		{"boolean", &protowire.FieldMetadata{TypeCode: protowire.TCBoolean}, true},
		{"decimal", &protowire.FieldMetadata{TypeCode: protowire.TCDecimal}, Decimal{Unscaled: big.NewInt(12345), Scale: 2}},
		{"fixed8", &protowire.FieldMetadata{TypeCode: protowire.TCFixed8}, Decimal{Unscaled: big.NewInt(42), Scale: 0}},
		{"fixed16", &protowire.FieldMetadata{TypeCode: protowire.TCFixed16}, Decimal{Unscaled: big.NewInt(42), Scale: 0}},
		{"varchar short", &protowire.FieldMetadata{TypeCode: protowire.TCVarchar}, []byte("short value")},
		{"varchar long", &protowire.FieldMetadata{TypeCode: protowire.TCVarchar}, bytes.Repeat([]byte("x"), 300)},
		{"varchar very long", &protowire.FieldMetadata{TypeCode: protowire.TCVarchar}, bytes.Repeat([]byte("x"), 70000)},
		{"nvarchar ascii", &protowire.FieldMetadata{TypeCode: protowire.TCNvarchar}, "hello"},
		{"nvarchar unicode", &protowire.FieldMetadata{TypeCode: protowire.TCNvarchar}, "héllo wörld"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := encodedSize(t, c.field, c.value)
			got, err := paramValueSize(c.field, c.value)
			if err != nil {
				t.Fatalf("paramValueSize: %v", err)
			}
			if got != want {
				t.Fatalf("paramValueSize = %d, encoded size = %d", got, want)
			}
		})
	}
}

func TestParamValueSizeNull(t *testing.T) {
	field := &protowire.FieldMetadata{TypeCode: protowire.TCInteger}
	want := encodedSize(t, field, nil)
	got, err := paramValueSize(field, nil)
	if err != nil {
		t.Fatalf("paramValueSize: %v", err)
	}
	if got != want {
		t.Fatalf("paramValueSize(nil) = %d, encoded size = %d", got, want)
	}
}

func TestVarLenSizeThresholds(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 1}, {245, 246}, {246, 249}, {0xFFFF, 0xFFFF + 3}, {0xFFFF + 1, 0xFFFF + 1 + 5},
	}
	for _, c := range cases {
		if got := varLenSize(c.n); got != c.want {
			t.Errorf("varLenSize(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
