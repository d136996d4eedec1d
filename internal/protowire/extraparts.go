package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// SessionContext identifies the server-side session this connection was
// handed off to, echoed back after a handshake that rebalanced the
// connection onto a different node.
type SessionContext uint64

func (SessionContext) Kind() PartKind { return PkSessionContext }
func (id *SessionContext) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	*id = SessionContext(dec.Uint64())
	return dec.Error()
}
func (id SessionContext) String() string { return fmt.Sprintf("%d", uint64(id)) }

// LobFlags is the single-byte flag field accompanying LOB-bearing
// requests, negotiating implicit LOB streaming (the server may send the
// first data chunk inline instead of requiring a separate ReadLob
// round trip).
type LobFlags int8

// Recognized LobFlags bits.
const (
	LfImplicitStreaming LobFlags = 0x01
)

func (LobFlags) Kind() PartKind { return PkLobFlags }
func (f LobFlags) NumArg() int  { return 1 }
func (f LobFlags) Size() int    { return 1 }
func (f LobFlags) Encode(enc *encoding.Encoder) error {
	enc.Int8(int8(f))
	return enc.Error()
}
func (f *LobFlags) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	*f = LobFlags(dec.Int8())
	return dec.Error()
}
func (f LobFlags) String() string {
	if f&LfImplicitStreaming != 0 {
		return "implicitStreaming"
	}
	return ""
}

// TableLocation reports, per affected table of a DDL/DML statement, the
// partition (volume) it was routed to.
type TableLocation struct {
	Locations []int32
}

func (t *TableLocation) Kind() PartKind { return PkTableLocation }
func (t *TableLocation) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	t.Locations = make([]int32, ph.NumArg())
	for i := range t.Locations {
		t.Locations[i] = dec.Int32()
	}
	return dec.Error()
}
func (t *TableLocation) String() string { return fmt.Sprintf("%v", t.Locations) }

// CommandInfo carries the originating source position (line number and
// module name) of
// a failing statement within a larger script, so errors can be mapped
// back to the caller's source text.
type CommandInfo struct {
	LineNumber int32
	ModuleName string
}

func (c *CommandInfo) Kind() PartKind { return PkCommandInfo }
func (c *CommandInfo) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	c.LineNumber = dec.Int32()
	n, ok := dec.LengthIndicator()
	if !ok {
		return dec.Error()
	}
	b := make([]byte, n)
	dec.Bytes(b)
	c.ModuleName = string(b)
	return dec.Error()
}
func (c *CommandInfo) String() string {
	return fmt.Sprintf("line %d module %q", c.LineNumber, c.ModuleName)
}

// FindLobRequest asks the server for the byte offset of a pattern within
// an open LOB, without transferring the matched data.
type FindLobRequest struct {
	ID      LocatorID
	Offset  int64
	Length  int32
	Pattern []byte
}

func (r *FindLobRequest) Kind() PartKind { return PkFindLobRequest }
func (r *FindLobRequest) NumArg() int    { return 1 }
func (r *FindLobRequest) Size() int      { return 8 + 8 + 4 + 2 + len(r.Pattern) }
func (r *FindLobRequest) Encode(enc *encoding.Encoder) error {
	enc.Uint64(uint64(r.ID))
	enc.Int64(r.Offset + 1)
	enc.Int32(r.Length)
	enc.LengthIndicator(len(r.Pattern))
	enc.Bytes(r.Pattern)
	return enc.Error()
}

// FindLobReply reports the offset of a pattern match located by a prior
// FindLobRequest. The wire carries it 1-based (0 if not found); Decode
// stores it 0-based in Offset and sets Found.
type FindLobReply struct {
	ID     LocatorID
	Offset int64
	Found  bool
}

func (r *FindLobReply) Kind() PartKind { return PkFindLobReply }
func (r *FindLobReply) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	r.ID = LocatorID(dec.Uint64())
	r.Offset = dec.Int64()
	r.Found = r.Offset != 0
	if r.Found {
		r.Offset--
	}
	return dec.Error()
}
func (r *FindLobReply) String() string {
	return fmt.Sprintf("id %d offset %d found %t", r.ID, r.Offset, r.Found)
}

// StreamDataPart carries a chunk of an output stream (a server-side
// cursor producing data incrementally rather than as a single result
// set): an end-of-stream byte followed by a length-indicator-prefixed
// payload.
type StreamDataPart struct {
	Data []byte
	Eof  bool
}

func (p *StreamDataPart) Kind() PartKind { return PkStreamData }
func (p *StreamDataPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	eof := dec.Int8()
	n, ok := dec.LengthIndicator()
	if !ok {
		return dec.Error()
	}
	p.Data = make([]byte, n)
	dec.Bytes(p.Data)
	p.Eof = eof != 0
	return dec.Error()
}
func (p *StreamDataPart) String() string { return fmt.Sprintf("%d bytes eof %t", len(p.Data), p.Eof) }
