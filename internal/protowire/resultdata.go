package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// ResultSetPart carries a chunk of row data exactly as received: the
// Part Framer has no notion of column types, so it hands the raw bytes
// to the caller (the statement engine), which decodes rows against the
// ResultSetMetadata already on hand.
type ResultSetPart struct {
	NumRows    int
	Attributes PartAttributes
	Data       []byte
}

func (p *ResultSetPart) Kind() PartKind { return PkResultSet }

func (p *ResultSetPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	p.NumRows = ph.NumArg()
	p.Attributes = ph.Attributes
	p.Data = make([]byte, ph.BufferLength)
	dec.Bytes(p.Data)
	return dec.Error()
}

func (p *ResultSetPart) String() string {
	return fmt.Sprintf("rows %d attributes %s bytes %d", p.NumRows, p.Attributes, len(p.Data))
}

// OutputParametersPart carries the raw bytes of a stored procedure's OUT
// and INOUT parameters. Nothing in the driver decodes them against the
// request's ParameterMetadata.
type OutputParametersPart struct {
	NumArg int
	Data   []byte
}

func (p *OutputParametersPart) Kind() PartKind { return PkOutputParameters }

func (p *OutputParametersPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	p.NumArg = ph.NumArg()
	p.Data = make([]byte, ph.BufferLength)
	dec.Bytes(p.Data)
	return dec.Error()
}

func (p *OutputParametersPart) String() string {
	return fmt.Sprintf("numArg %d bytes %d", p.NumArg, len(p.Data))
}
