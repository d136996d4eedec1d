package protowire

import (
	"fmt"
	"sort"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// ParameterOptions is a bitfield describing how a procedure/statement
// parameter may be supplied.
type ParameterOptions int8

// Recognized parameter options.
const (
	PoMandatory ParameterOptions = 0x01
	PoOptional  ParameterOptions = 0x02
	PoDefault   ParameterOptions = 0x04
)

var parameterOptionsText = map[ParameterOptions]string{
	PoMandatory: "mandatory",
	PoOptional:  "optional",
	PoDefault:   "default",
}

func (o ParameterOptions) String() string {
	var t []string
	for opt, text := range parameterOptionsText {
		if o&opt != 0 {
			t = append(t, text)
		}
	}
	sort.Strings(t)
	return fmt.Sprintf("%v", t)
}

// Nullable reports whether the parameter accepts NULL.
func (o ParameterOptions) Nullable() bool { return o&PoMandatory == 0 }

// ParameterMode is a bitfield describing a parameter's call direction.
type ParameterMode int8

// Recognized parameter modes.
const (
	PmIn    ParameterMode = 0x01
	PmInout ParameterMode = 0x02
	PmOut   ParameterMode = 0x04
)

var parameterModeText = map[ParameterMode]string{
	PmIn:    "in",
	PmInout: "inout",
	PmOut:   "out",
}

func (m ParameterMode) String() string {
	var t []string
	for mode, text := range parameterModeText {
		if m&mode != 0 {
			t = append(t, text)
		}
	}
	sort.Strings(t)
	return fmt.Sprintf("%v", t)
}

const noFieldName uint32 = 0xFFFFFFFF

// offsetName pairs a name-table byte offset with the name resolved for it.
type offsetName struct {
	offset uint32
	name   string
}

// nameTable is a shared CESU-8 name buffer indexed by byte offset, as used
// by both ParameterMetadata and ResultSetMetadata: every field header
// carries a 4-byte offset into one trailing name table instead of an
// inline name, so the table is built once (every referenced offset
// inserted in ascending order) and decoded in a single forward pass.
type nameTable []offsetName

func (nt nameTable) search(offset uint32) int {
	return sort.Search(len(nt), func(i int) bool { return nt[i].offset >= offset })
}

func (nt *nameTable) insert(offset uint32) {
	if offset == noFieldName {
		return
	}
	i := nt.search(offset)
	switch {
	case i >= len(*nt):
		*nt = append(*nt, offsetName{offset: offset})
	case (*nt)[i].offset == offset:
	default:
		*nt = append(*nt, offsetName{})
		copy((*nt)[i+1:], (*nt)[i:])
		(*nt)[i] = offsetName{offset: offset}
	}
}

func (nt nameTable) name(offset uint32) string {
	i := nt.search(offset)
	if i < len(nt) {
		return nt[i].name
	}
	return ""
}

// decode walks the table in ascending offset order, skipping the gaps
// between entries (padding belonging to names this decode never
// referenced) and reading a length-indicator-prefixed CESU-8 string at
// each referenced offset.
func (nt nameTable) decode(dec *encoding.Decoder) error {
	pos := uint32(0)
	for i, on := range nt {
		if diff := int(on.offset - pos); diff > 0 {
			dec.Skip(diff)
			pos += uint32(diff)
		}
		n, ok := dec.LengthIndicator()
		if !ok {
			continue
		}
		b, err := dec.CESU8Bytes(n)
		if err != nil {
			return fmt.Errorf("protowire: decoding field name: %w", err)
		}
		nt[i].name = string(b)
		pos += uint32(n) + 1
	}
	return dec.Error()
}

// FieldMetadata describes one bound parameter of a prepared statement or
// procedure call.
type FieldMetadata struct {
	Options  ParameterOptions
	TypeCode TypeCode
	Mode     ParameterMode
	Length   int16
	Fraction int16
	Name     string

	nameOffset uint32
}

const parameterFieldSize = 16

func (f *FieldMetadata) decode(dec *encoding.Decoder) {
	f.Options = ParameterOptions(dec.Int8())
	f.TypeCode = TypeCode(dec.Int8())
	f.Mode = ParameterMode(dec.Int8())
	dec.Skip(1)
	f.nameOffset = dec.Uint32()
	f.Length = dec.Int16()
	f.Fraction = dec.Int16()
	dec.Skip(4)
}

func (f *FieldMetadata) String() string {
	return fmt.Sprintf("options %s mode %s typeCode %s length %d fraction %d name %q",
		f.Options, f.Mode, f.TypeCode, f.Length, f.Fraction, f.Name)
}

// ParameterMetadataPart is the ParameterMetadata reply part, describing
// the bind parameters of a prepared statement or procedure call.
type ParameterMetadataPart struct {
	Fields []*FieldMetadata
}

func (p *ParameterMetadataPart) Kind() PartKind { return PkParameterMetadata }

func (p *ParameterMetadataPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	p.Fields = make([]*FieldMetadata, ph.NumArg())

	var names nameTable
	for i := range p.Fields {
		f := new(FieldMetadata)
		f.decode(dec)
		p.Fields[i] = f
		names.insert(f.nameOffset)
	}
	if err := names.decode(dec); err != nil {
		return err
	}
	for _, f := range p.Fields {
		f.Name = names.name(f.nameOffset)
	}
	return dec.Error()
}

func (p *ParameterMetadataPart) String() string { return fmt.Sprintf("%v", p.Fields) }

// ColumnOptions is a bitfield describing a result-set column.
type ColumnOptions int8

// Recognized column options.
const (
	CoColumnMandatory ColumnOptions = 0x01
	CoColumnOptional  ColumnOptions = 0x02
)

func (o ColumnOptions) String() string {
	switch {
	case o&CoColumnOptional != 0:
		return "optional"
	case o&CoColumnMandatory != 0:
		return "mandatory"
	default:
		return ""
	}
}

// Nullable reports whether the column may contain NULL.
func (o ColumnOptions) Nullable() bool { return o&CoColumnOptional != 0 }

// ResultField describes one column of a result set.
type ResultField struct {
	Options           ColumnOptions
	TypeCode          TypeCode
	Fraction          int16
	Length            int16
	TableName         string
	SchemaName        string
	ColumnName        string
	ColumnDisplayName string

	tableNameOffset         uint32
	schemaNameOffset        uint32
	columnNameOffset        uint32
	columnDisplayNameOffset uint32
}

const resultFieldSize = 24

func (f *ResultField) decode(dec *encoding.Decoder) {
	f.Options = ColumnOptions(dec.Int8())
	f.TypeCode = TypeCode(dec.Int8())
	f.Fraction = dec.Int16()
	f.Length = dec.Int16()
	dec.Skip(2)
	f.tableNameOffset = dec.Uint32()
	f.schemaNameOffset = dec.Uint32()
	f.columnNameOffset = dec.Uint32()
	f.columnDisplayNameOffset = dec.Uint32()
}

// Name returns the display name, falling back to the column name (the
// server omits the display name for anonymous/expression columns).
func (f *ResultField) Name() string {
	if f.ColumnDisplayName != "" {
		return f.ColumnDisplayName
	}
	return f.ColumnName
}

func (f *ResultField) String() string {
	return fmt.Sprintf("options %s typeCode %s fraction %d length %d table %q schema %q column %q displayName %q",
		f.Options, f.TypeCode, f.Fraction, f.Length, f.TableName, f.SchemaName, f.ColumnName, f.ColumnDisplayName)
}

// ResultSetMetadataPart is the ResultSetMetadata reply part, describing
// the columns produced by a query.
type ResultSetMetadataPart struct {
	Fields []*ResultField
}

func (p *ResultSetMetadataPart) Kind() PartKind { return PkResultSetMetadata }

func (p *ResultSetMetadataPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	p.Fields = make([]*ResultField, ph.NumArg())

	var names nameTable
	for i := range p.Fields {
		f := new(ResultField)
		f.decode(dec)
		p.Fields[i] = f
		names.insert(f.tableNameOffset)
		names.insert(f.schemaNameOffset)
		names.insert(f.columnNameOffset)
		names.insert(f.columnDisplayNameOffset)
	}
	if err := names.decode(dec); err != nil {
		return err
	}
	for _, f := range p.Fields {
		f.TableName = names.name(f.tableNameOffset)
		f.SchemaName = names.name(f.schemaNameOffset)
		f.ColumnName = names.name(f.columnNameOffset)
		f.ColumnDisplayName = names.name(f.columnDisplayNameOffset)
	}
	return dec.Error()
}

func (p *ResultSetMetadataPart) String() string { return fmt.Sprintf("%v", p.Fields) }
