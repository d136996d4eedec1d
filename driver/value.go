package driver

import (
	"fmt"
	"math/big"
	"time"

	"github.com/hdbconnect/hdbgo/internal/protowire"
	"github.com/hdbconnect/hdbgo/internal/protowire/cesu8"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// Decimal is the driver-visible representation of a DECIMAL/SMALLDECIMAL
// or FIXED column value: an arbitrary-precision mantissa and a decimal
// scale, value == Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int
}

func (d Decimal) String() string {
	if d.Unscaled == nil {
		return "<nil>"
	}
	return protowire.Decimal{Unscaled: d.Unscaled, Scale: d.Scale}.String()
}

// fixedWidthScalar reports whether tc is a scalar type with no wire-level
// NULL sentinel of its own; this driver prefixes such values with a
// 1-byte null indicator (0 = value follows, 1 = NULL).
func fixedWidthScalar(tc protowire.TypeCode) bool {
	switch tc {
	case protowire.TCTinyint, protowire.TCSmallint, protowire.TCInteger, protowire.TCBigint,
		protowire.TCReal, protowire.TCDouble, protowire.TCBoolean,
		protowire.TCDate, protowire.TCTime, protowire.TCTimestamp,
		protowire.TCLongdate, protowire.TCSeconddate, protowire.TCDaydate, protowire.TCSecondtime,
		protowire.TCFixed8, protowire.TCFixed12, protowire.TCFixed16:
		return true
	default:
		return false
	}
}

// decodeRowValue reads one column value per field's declared type and
// scale, returning a database/sql-compatible Go value (or nil for SQL
// NULL).
func decodeRowValue(dec *encoding.Decoder, field *protowire.ResultField, lobChunkSize int32) (any, error) {
	tc := field.TypeCode
	if fixedWidthScalar(tc) && tc != protowire.TCFixed8 && tc != protowire.TCFixed12 && tc != protowire.TCFixed16 {
		if dec.Byte() == 1 {
			return nil, dec.Error()
		}
	}

	switch tc {
	case protowire.TCTinyint:
		return int64(dec.Byte()), dec.Error()
	case protowire.TCSmallint:
		return int64(dec.Int16()), dec.Error()
	case protowire.TCInteger:
		return int64(dec.Int32()), dec.Error()
	case protowire.TCBigint:
		return dec.Int64(), dec.Error()
	case protowire.TCReal:
		return float64(dec.Float32()), dec.Error()
	case protowire.TCDouble:
		return dec.Float64(), dec.Error()
	case protowire.TCBoolean:
		return dec.Bool(), dec.Error()
	case protowire.TCDate, protowire.TCTime, protowire.TCTimestamp:
		return nil, fmt.Errorf("driver: legacy DATE/TIME/TIMESTAMP columns are not supported, use LONGDATE/SECONDDATE/DAYDATE/SECONDTIME")
	case protowire.TCLongdate:
		t, ok := protowire.LongDate(dec.Int64()).Time()
		if !ok {
			return nil, nil
		}
		return t, dec.Error()
	case protowire.TCSeconddate:
		t, ok := protowire.SecondDate(dec.Int64()).Time()
		if !ok {
			return nil, nil
		}
		return t, dec.Error()
	case protowire.TCDaydate:
		t, ok := protowire.DayDate(dec.Int32()).Time()
		if !ok {
			return nil, nil
		}
		return t, dec.Error()
	case protowire.TCSecondtime:
		t, ok := protowire.SecondTime(dec.Int32()).Time()
		if !ok {
			return nil, nil
		}
		return t, dec.Error()

	case protowire.TCDecimal, protowire.TCSmalldecimal:
		d, ok, err := protowire.DecodeLegacy(dec)
		if err != nil || !ok {
			return nil, err
		}
		return Decimal{Unscaled: d.Unscaled, Scale: d.Scale}, nil
	case protowire.TCFixed8, protowire.TCFixed12, protowire.TCFixed16:
		if dec.Byte() == 1 {
			return nil, dec.Error()
		}
		size := map[protowire.TypeCode]int{protowire.TCFixed8: 8, protowire.TCFixed12: 12, protowire.TCFixed16: 16}[tc]
		d := protowire.DecodeFixed(dec, size, int(field.Fraction))
		return Decimal{Unscaled: d.Unscaled, Scale: d.Scale}, dec.Error()

	case protowire.TCChar, protowire.TCVarchar, protowire.TCString, protowire.TCShorttext:
		n, ok := dec.LengthIndicator()
		if !ok {
			return nil, dec.Error()
		}
		b := make([]byte, n)
		dec.Bytes(b)
		return string(b), dec.Error()
	case protowire.TCNchar, protowire.TCNvarchar, protowire.TCNstring, protowire.TCText:
		n, ok := dec.LengthIndicator()
		if !ok {
			return nil, dec.Error()
		}
		b, err := dec.CESU8Bytes(n)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case protowire.TCBinary, protowire.TCVarbinary, protowire.TCBstring:
		n, ok := dec.LengthIndicator()
		if !ok {
			return nil, dec.Error()
		}
		b := make([]byte, n)
		dec.Bytes(b)
		return b, dec.Error()

	case protowire.TCClob, protowire.TCNclob, protowire.TCBlob, protowire.TCBlocator, protowire.TCNlocator:
		descr, err := protowire.DecodeLobOutDescr(dec, tc, tc.IsCharLob())
		if err != nil {
			return nil, err
		}
		if descr == nil {
			return nil, nil
		}
		return descr, nil

	default:
		return nil, fmt.Errorf("driver: unsupported column type %s", tc)
	}
}

// encodeParamValue writes one bound parameter value per field's declared
// type.
func encodeParamValue(enc *encoding.Encoder, field *protowire.FieldMetadata, v any) error {
	tc := field.TypeCode
	if v == nil {
		return encodeNullParam(enc, tc)
	}
	if fixedWidthScalar(tc) && tc != protowire.TCFixed8 && tc != protowire.TCFixed12 && tc != protowire.TCFixed16 {
		enc.Byte(0)
	}
	switch tc {
	case protowire.TCTinyint:
		enc.Byte(byte(toInt64(v)))
	case protowire.TCSmallint:
		enc.Int16(int16(toInt64(v)))
	case protowire.TCInteger:
		enc.Int32(int32(toInt64(v)))
	case protowire.TCBigint:
		enc.Int64(toInt64(v))
	case protowire.TCReal:
		enc.Float32(float32(toFloat64(v)))
	case protowire.TCDouble:
		enc.Float64(toFloat64(v))
	case protowire.TCBoolean:
		b, _ := v.(bool)
		enc.Bool(b)
	case protowire.TCLongdate:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		enc.Int64(int64(protowire.EncodeLongDate(t)))
	case protowire.TCSeconddate:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		enc.Int64(int64(protowire.EncodeSecondDate(t)))
	case protowire.TCDaydate:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		enc.Int32(int32(protowire.EncodeDayDate(t)))
	case protowire.TCSecondtime:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		enc.Int32(int32(protowire.EncodeSecondTime(t)))

	case protowire.TCDecimal, protowire.TCSmalldecimal:
		d, err := toDecimal(v)
		if err != nil {
			return err
		}
		return protowire.EncodeLegacy(enc, protowire.Decimal{Unscaled: d.Unscaled, Scale: d.Scale})
	case protowire.TCFixed8, protowire.TCFixed12, protowire.TCFixed16:
		d, err := toDecimal(v)
		if err != nil {
			return err
		}
		enc.Byte(0)
		size := map[protowire.TypeCode]int{protowire.TCFixed8: 8, protowire.TCFixed12: 12, protowire.TCFixed16: 16}[tc]
		protowire.EncodeFixed(enc, protowire.Decimal{Unscaled: d.Unscaled, Scale: d.Scale}, size)

	case protowire.TCChar, protowire.TCVarchar, protowire.TCString, protowire.TCShorttext,
		protowire.TCBinary, protowire.TCVarbinary, protowire.TCBstring:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		enc.LengthIndicator(len(b))
		enc.Bytes(b)
	case protowire.TCNchar, protowire.TCNvarchar, protowire.TCNstring, protowire.TCText:
		s, ok := v.(string)
		if !ok {
			return &SerializationError{Err: fmt.Errorf("driver: expected string for %s, got %T", tc, v)}
		}
		enc.LengthIndicator(cesu8.StringSize(s))
		enc.CESU8String(s)

	default:
		return &SerializationError{Err: fmt.Errorf("driver: unsupported parameter type %s", tc)}
	}
	return enc.Error()
}

// varLenSize is the byte cost of a LengthIndicator prefix for a value of
// n bytes (mirrors the escape thresholds in encoding.Encoder.LengthIndicator).
func varLenSize(n int) int {
	switch {
	case n <= 245:
		return 1 + n
	case n <= 0xFFFF:
		return 3 + n
	default:
		return 5 + n
	}
}

// paramValueSize precomputes the wire size encodeParamValue would
// produce for v, without encoding it; used to split a parameter batch
// across Execute requests honoring the connection's packet size.
func paramValueSize(field *protowire.FieldMetadata, v any) (int, error) {
	tc := field.TypeCode
	if v == nil {
		switch tc {
		case protowire.TCDecimal, protowire.TCSmalldecimal:
			return 16, nil
		case protowire.TCChar, protowire.TCVarchar, protowire.TCString, protowire.TCShorttext,
			protowire.TCBinary, protowire.TCVarbinary, protowire.TCBstring,
			protowire.TCNchar, protowire.TCNvarchar, protowire.TCNstring, protowire.TCText:
			return 1, nil
		default:
			return 1, nil
		}
	}

	prefix := 0
	if fixedWidthScalar(tc) && tc != protowire.TCFixed8 && tc != protowire.TCFixed12 && tc != protowire.TCFixed16 {
		prefix = 1
	}
	switch tc {
	case protowire.TCTinyint, protowire.TCBoolean:
		return prefix + 1, nil
	case protowire.TCSmallint:
		return prefix + 2, nil
	case protowire.TCInteger, protowire.TCReal, protowire.TCDaydate, protowire.TCSecondtime:
		return prefix + 4, nil
	case protowire.TCBigint, protowire.TCDouble, protowire.TCLongdate, protowire.TCSeconddate:
		return prefix + 8, nil
	case protowire.TCDecimal, protowire.TCSmalldecimal:
		return 16, nil
	case protowire.TCFixed8:
		return 1 + 8, nil
	case protowire.TCFixed12:
		return 1 + 12, nil
	case protowire.TCFixed16:
		return 1 + 16, nil
	case protowire.TCChar, protowire.TCVarchar, protowire.TCString, protowire.TCShorttext,
		protowire.TCBinary, protowire.TCVarbinary, protowire.TCBstring:
		b, err := toBytes(v)
		if err != nil {
			return 0, err
		}
		return varLenSize(len(b)), nil
	case protowire.TCNchar, protowire.TCNvarchar, protowire.TCNstring, protowire.TCText:
		s, ok := v.(string)
		if !ok {
			return 0, &SerializationError{Err: fmt.Errorf("driver: expected string for %s, got %T", tc, v)}
		}
		return varLenSize(cesu8.StringSize(s)), nil
	default:
		return 0, &SerializationError{Err: fmt.Errorf("driver: unsupported parameter type %s", tc)}
	}
}

func toInt64(v any) int64 {
	switch v := v.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		return 0
	}
}

func toTime(v any) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, &SerializationError{Err: fmt.Errorf("driver: expected time.Time, got %T", v)}
	}
	return t, nil
}

func toDecimal(v any) (Decimal, error) {
	switch v := v.(type) {
	case Decimal:
		return v, nil
	default:
		return Decimal{}, &SerializationError{Err: fmt.Errorf("driver: expected Decimal, got %T", v)}
	}
}

func toBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, &SerializationError{Err: fmt.Errorf("driver: expected []byte or string, got %T", v)}
	}
}

func encodeNullParam(enc *encoding.Encoder, tc protowire.TypeCode) error {
	switch tc {
	case protowire.TCDecimal, protowire.TCSmalldecimal:
		protowire.EncodeLegacyNull(enc)
	case protowire.TCFixed8, protowire.TCFixed12, protowire.TCFixed16:
		enc.Byte(1)
	case protowire.TCChar, protowire.TCVarchar, protowire.TCString, protowire.TCShorttext,
		protowire.TCBinary, protowire.TCVarbinary, protowire.TCBstring,
		protowire.TCNchar, protowire.TCNvarchar, protowire.TCNstring, protowire.TCText:
		enc.LengthIndicatorNull()
	default:
		enc.Byte(1)
	}
	return enc.Error()
}
