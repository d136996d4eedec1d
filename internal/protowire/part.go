package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// PartKind identifies the type of a part's payload.
type PartKind int8

// Recognized part kinds. Values are protocol-internal identifiers; an
// unrecognized kind is not an error, it is logged and skipped using the
// part header's buffer length (see the driver's session.readReply).
const (
	PkCommand             PartKind = 3
	PkResultSet           PartKind = 5
	PkError               PartKind = 6
	PkStatementID         PartKind = 7
	PkTransactionFlags    PartKind = 8
	PkRowsAffected        PartKind = 9
	PkResultSetID         PartKind = 10
	PkTopologyInformation PartKind = 11
	PkTableLocation       PartKind = 12
	PkReadLobRequest      PartKind = 13
	PkReadLobReply        PartKind = 14
	PkAuthentication      PartKind = 15
	PkSessionContext      PartKind = 16
	PkClientID            PartKind = 17
	PkWriteLobRequest     PartKind = 18
	PkClientInfo          PartKind = 19
	PkStreamData          PartKind = 20
	PkOutputParameters    PartKind = 21
	PkConnectOptions      PartKind = 22
	PkCommandInfo         PartKind = 23
	PkWriteLobReply       PartKind = 24
	PkParameters          PartKind = 25
	PkFetchSize           PartKind = 26
	PkParameterMetadata   PartKind = 27
	PkResultSetMetadata   PartKind = 28
	PkFindLobRequest      PartKind = 29
	PkFindLobReply        PartKind = 30
	PkStatementContext    PartKind = 31
	PkClientContext       PartKind = 32
	PkDBConnectInfo       PartKind = 33
	PkLobFlags            PartKind = 34
	PkXatOptions          PartKind = 35
)

var partKindNames = map[PartKind]string{
	PkCommand: "COMMAND", PkResultSet: "RESULTSET", PkError: "ERROR",
	PkStatementID: "STATEMENTID", PkTransactionFlags: "TRANSACTIONFLAGS",
	PkRowsAffected: "ROWSAFFECTED", PkResultSetID: "RESULTSETID",
	PkTopologyInformation: "TOPOLOGYINFORMATION", PkTableLocation: "TABLELOCATION",
	PkReadLobRequest: "READLOBREQUEST", PkReadLobReply: "READLOBREPLY",
	PkAuthentication: "AUTHENTICATION", PkSessionContext: "SESSIONCONTEXT",
	PkClientID: "CLIENTID", PkWriteLobRequest: "WRITELOBREQUEST",
	PkClientInfo: "CLIENTINFO", PkStreamData: "STREAMDATA",
	PkOutputParameters: "OUTPUTPARAMETERS", PkConnectOptions: "CONNECTOPTIONS",
	PkCommandInfo: "COMMANDINFO", PkWriteLobReply: "WRITELOBREPLY",
	PkParameters: "PARAMETERS", PkFetchSize: "FETCHSIZE",
	PkParameterMetadata: "PARAMETERMETADATA", PkResultSetMetadata: "RESULTSETMETADATA",
	PkFindLobRequest: "FINDLOBREQUEST", PkFindLobReply: "FINDLOBREPLY",
	PkStatementContext: "STATEMENTCONTEXT", PkClientContext: "CLIENTCONTEXT",
	PkDBConnectInfo: "DBCONNECTINFO", PkLobFlags: "LOBFLAGS", PkXatOptions: "XATOPTIONS",
}

func (k PartKind) String() string {
	if s, ok := partKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PartKind(%d)", int8(k))
}

// PartAttributes is the part header's bit-packed attribute byte.
type PartAttributes uint8

// Part-attribute bits.
const (
	PaLastPacket PartAttributes = 0x01
	PaHasNext    PartAttributes = 0x02
	PaFirstInSeq PartAttributes = 0x04
	PaRowNotFound PartAttributes = 0x08
	PaResultSetClosed PartAttributes = 0x10
)

// LastPacket reports whether this is the final part of a sequence (e.g.
// the last chunk of a paged result set).
func (a PartAttributes) LastPacket() bool { return a&PaLastPacket != 0 }

// HasNext reports whether more parts of the same sequence follow in a
// later segment.
func (a PartAttributes) HasNext() bool { return a&PaHasNext != 0 }

// FirstInSequence reports whether this is the first part of a sequence.
func (a PartAttributes) FirstInSequence() bool { return a&PaFirstInSeq != 0 }

// RowNotFound reports an empty fetch caused by a "row not found" condition.
func (a PartAttributes) RowNotFound() bool { return a&PaRowNotFound != 0 }

// ResultSetClosed reports that the result set producing this part has
// been closed server-side.
func (a PartAttributes) ResultSetClosed() bool { return a&PaResultSetClosed != 0 }

func (a PartAttributes) String() string {
	s := ""
	add := func(set bool, name string) {
		if set {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(a.LastPacket(), "LAST")
	add(a.HasNext(), "HASNEXT")
	add(a.FirstInSequence(), "FIRST")
	add(a.RowNotFound(), "ROWNOTFOUND")
	add(a.ResultSetClosed(), "RSCLOSED")
	if s == "" {
		return "(none)"
	}
	return s
}

// PartHeaderSize is the wire size of a part header, before payload and padding.
const PartHeaderSize = 16

// PartHeader is the 16-byte header preceding every part's payload.
type PartHeader struct {
	Kind          PartKind
	Attributes    PartAttributes
	ArgumentCount int16
	BigArgCount   int32
	BufferLength  int32
	BufferSize    int32
}

// NumArg returns the part's argument count, resolving the BigArgCount
// escape (ArgumentCount == -1) used when more than 32767 arguments
// follow.
func (h *PartHeader) NumArg() int {
	if h.ArgumentCount == -1 {
		return int(h.BigArgCount)
	}
	return int(h.ArgumentCount)
}

// SetNumArg sets ArgumentCount, switching to the BigArgCount escape when
// n exceeds what an int16 can hold.
func (h *PartHeader) SetNumArg(n int) error {
	switch {
	case n <= 0:
		return fmt.Errorf("protowire: invalid argument count %d", n)
	case n <= 32767:
		h.ArgumentCount = int16(n)
		h.BigArgCount = 0
	default:
		h.ArgumentCount = -1
		h.BigArgCount = int32(n)
	}
	return nil
}

func (h *PartHeader) String() string {
	return fmt.Sprintf("kind %s attributes %s numArg %d bufferLength %d bufferSize %d",
		h.Kind, h.Attributes, h.NumArg(), h.BufferLength, h.BufferSize)
}

// Encode writes the part header.
func (h *PartHeader) Encode(enc *encoding.Encoder) {
	enc.Int8(int8(h.Kind))
	enc.Byte(byte(h.Attributes))
	enc.Int16(h.ArgumentCount)
	enc.Int32(h.BigArgCount)
	enc.Int32(h.BufferLength)
	enc.Int32(h.BufferSize)
}

// Decode reads the part header.
func (h *PartHeader) Decode(dec *encoding.Decoder) error {
	h.Kind = PartKind(dec.Int8())
	h.Attributes = PartAttributes(dec.Byte())
	h.ArgumentCount = dec.Int16()
	h.BigArgCount = dec.Int32()
	h.BufferLength = dec.Int32()
	h.BufferSize = dec.Int32()
	return dec.Error()
}

// PadBytes returns the number of zero-padding bytes needed to round size
// up to the next 8-byte boundary.
func PadBytes(size int) int {
	if r := size % 8; r != 0 {
		return 8 - r
	}
	return 0
}

// Part is anything that can report which PartKind it encodes as.
type Part interface {
	Kind() PartKind
}

// PartWriter is a Part that can be serialized into a request.
type PartWriter interface {
	Part
	NumArg() int
	Size() int
	Encode(enc *encoding.Encoder) error
}

// PartReader is a Part that can be deserialized from a reply.
type PartReader interface {
	Part
	Decode(dec *encoding.Decoder, ph *PartHeader) error
}
