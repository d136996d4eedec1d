package protowire

import "fmt"

// TypeCode identifies the wire datatype of a field or parameter.
type TypeCode int8

// Recognized type codes (subset actually produced/consumed by the core;
// reserved and ABAP-only codes are omitted).
const (
	TCNull      TypeCode = 0
	TCTinyint   TypeCode = 1
	TCSmallint  TypeCode = 2
	TCInteger   TypeCode = 3
	TCBigint    TypeCode = 4
	TCDecimal   TypeCode = 5
	TCReal      TypeCode = 6
	TCDouble    TypeCode = 7
	TCChar      TypeCode = 8
	TCVarchar   TypeCode = 9
	TCNchar     TypeCode = 10
	TCNvarchar  TypeCode = 11
	TCBinary    TypeCode = 12
	TCVarbinary TypeCode = 13
	TCDate      TypeCode = 14
	TCTime      TypeCode = 15
	TCTimestamp TypeCode = 16
	TCClob      TypeCode = 25
	TCNclob     TypeCode = 26
	TCBlob      TypeCode = 27
	TCBoolean   TypeCode = 28
	TCString    TypeCode = 29
	TCNstring   TypeCode = 30
	TCBlocator  TypeCode = 31
	TCNlocator  TypeCode = 32
	TCBstring   TypeCode = 33

	TCSmalldecimal TypeCode = 47
	TCText         TypeCode = 51
	TCShorttext    TypeCode = 52

	TCLongdate   TypeCode = 61
	TCSeconddate TypeCode = 62
	TCDaydate    TypeCode = 63
	TCSecondtime TypeCode = 64

	TCFixed8  TypeCode = 81
	TCFixed12 TypeCode = 82
	TCFixed16 TypeCode = 76
)

var typeCodeNames = map[TypeCode]string{
	TCNull: "NULL", TCTinyint: "TINYINT", TCSmallint: "SMALLINT", TCInteger: "INTEGER",
	TCBigint: "BIGINT", TCDecimal: "DECIMAL", TCReal: "REAL", TCDouble: "DOUBLE",
	TCChar: "CHAR", TCVarchar: "VARCHAR", TCNchar: "NCHAR", TCNvarchar: "NVARCHAR",
	TCBinary: "BINARY", TCVarbinary: "VARBINARY", TCDate: "DATE", TCTime: "TIME",
	TCTimestamp: "TIMESTAMP", TCClob: "CLOB", TCNclob: "NCLOB", TCBlob: "BLOB",
	TCBoolean: "BOOLEAN", TCString: "STRING", TCNstring: "NSTRING",
	TCBlocator: "BLOCATOR", TCNlocator: "NLOCATOR", TCBstring: "BSTRING",
	TCSmalldecimal: "SMALLDECIMAL", TCText: "TEXT", TCShorttext: "SHORTTEXT",
	TCLongdate: "LONGDATE", TCSeconddate: "SECONDDATE", TCDaydate: "DAYDATE",
	TCSecondtime: "SECONDTIME", TCFixed8: "FIXED8", TCFixed12: "FIXED12", TCFixed16: "FIXED16",
}

func (tc TypeCode) String() string {
	if s, ok := typeCodeNames[tc]; ok {
		return s
	}
	return fmt.Sprintf("TypeCode(%d)", int8(tc))
}

// IsLob reports whether values of this type arrive as an out-of-band LOB handle.
func (tc TypeCode) IsLob() bool {
	return tc == TCClob || tc == TCNclob || tc == TCBlob
}

// IsCharLob reports whether the LOB tracks a character count in addition
// to a byte count (CLOB/NCLOB, as opposed to BLOB).
func (tc TypeCode) IsCharLob() bool {
	return tc == TCClob || tc == TCNclob
}

// IsNCharBased reports whether the type is carried in CESU-8 (the N-prefixed
// character types and NCLOB).
func (tc TypeCode) IsNCharBased() bool {
	return tc == TCNchar || tc == TCNvarchar || tc == TCNstring || tc == TCNclob || tc == TCText || tc == TCShorttext
}

// IsDecimal reports whether the type is one of the fixed-precision decimal
// wire formats.
func (tc TypeCode) IsDecimal() bool {
	switch tc {
	case TCDecimal, TCSmalldecimal, TCFixed8, TCFixed12, TCFixed16:
		return true
	}
	return false
}

// IsDateTime reports whether the type is one of the four date/time scalars.
func (tc TypeCode) IsDateTime() bool {
	switch tc {
	case TCLongdate, TCSeconddate, TCDaydate, TCSecondtime:
		return true
	}
	return false
}
