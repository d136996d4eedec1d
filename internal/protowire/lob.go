package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// LocatorID identifies a server-side LOB value across ReadLob/WriteLob
// round trips.
type LocatorID uint64

// LobOptions is the bit-packed options byte carried by every inline and
// out-of-band LOB descriptor.
type LobOptions int8

// LOB option bits.
const (
	LoNullIndicator LobOptions = 0x01
	LoDataIncluded  LobOptions = 0x02
	LoLastData      LobOptions = 0x04
)

// IsNull reports whether the descriptor denotes a SQL NULL LOB.
func (o LobOptions) IsNull() bool { return o&LoNullIndicator != 0 }

// DataIncluded reports whether the descriptor carries inline data.
func (o LobOptions) DataIncluded() bool { return o&LoDataIncluded != 0 }

// LastData reports whether this chunk is the final one for its LOB.
func (o LobOptions) LastData() bool { return o&LoLastData != 0 }

func (o LobOptions) String() string {
	s := ""
	add := func(set bool, name string) {
		if set {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(o.IsNull(), "NULL")
	add(o.DataIncluded(), "DATA")
	add(o.LastData(), "LAST")
	if s == "" {
		return "(none)"
	}
	return s
}

// LobOutDescr is the inline LOB descriptor embedded in a result-set row:
// a prefix of the value plus enough metadata (locator, total lengths) to
// stream the remainder with ReadLobRequest/ReadLobReply.
type LobOutDescr struct {
	TypeCode    TypeCode
	IsCharBased bool
	Opt         LobOptions
	NumChar     int64 // valid only for char-based LOBs
	NumByte     int64
	ID          LocatorID
	Data        []byte // inline prefix; len(Data) may be < NumByte
}

// Eof reports whether the inline prefix already contains the whole value.
func (d *LobOutDescr) Eof() bool { return d.Opt.LastData() }

// DecodeLobOutDescr reads one inline LOB descriptor as embedded in a row buffer.
func DecodeLobOutDescr(dec *encoding.Decoder, tc TypeCode, isCharBased bool) (*LobOutDescr, error) {
	d := &LobOutDescr{TypeCode: tc, IsCharBased: isCharBased}
	d.Opt = LobOptions(dec.Int8())
	if d.Opt.IsNull() {
		return nil, nil
	}
	dec.Skip(2)
	d.NumChar = dec.Int64()
	d.NumByte = dec.Int64()
	d.ID = LocatorID(dec.Uint64())
	size := int(dec.Int32())
	d.Data = make([]byte, size)
	dec.Bytes(d.Data)
	return d, dec.Error()
}

// ReadLobRequest asks the server for one more chunk of an out-of-band LOB,
// starting at a 1-based byte (or, for NCLOB, character) offset.
type ReadLobRequest struct {
	ID     LocatorID
	Offset int64 // 0-based; encoded 1-based on the wire
	Length int32
}

func (r *ReadLobRequest) Kind() PartKind { return PkReadLobRequest }
func (r *ReadLobRequest) NumArg() int    { return 1 }
func (r *ReadLobRequest) Size() int      { return 24 }

func (r *ReadLobRequest) Encode(enc *encoding.Encoder) error {
	enc.Uint64(uint64(r.ID))
	enc.Int64(r.Offset + 1)
	enc.Int32(r.Length)
	enc.Zeroes(4)
	return nil
}

func (r *ReadLobRequest) String() string {
	return fmt.Sprintf("id %d offset %d length %d", r.ID, r.Offset, r.Length)
}

// ReadLobReply carries the next chunk of an out-of-band LOB.
type ReadLobReply struct {
	ID   LocatorID
	Data []byte
	Eof  bool
}

func (r *ReadLobReply) Kind() PartKind { return PkReadLobReply }

// Decode reads a ReadLobReply part; numArg must be 1 (the server replies
// with data for a single LOB per request, even when several were asked for).
func (r *ReadLobReply) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	if ph.NumArg() != 1 {
		return fmt.Errorf("protowire: ReadLobReply: expected numArg 1, got %d", ph.NumArg())
	}
	r.ID = LocatorID(dec.Uint64())
	opt := LobOptions(dec.Int8())
	chunkLen := dec.Int32()
	dec.Skip(3)
	r.Eof = opt.LastData()
	r.Data = make([]byte, chunkLen)
	dec.Bytes(r.Data)
	return dec.Error()
}

func (r *ReadLobReply) String() string {
	return fmt.Sprintf("id %d len %d eof %t", r.ID, len(r.Data), r.Eof)
}

// writeLobRequestSize is the per-chunk wire overhead ahead of its payload:
// locatorID(8) + options(1) + offset(8) + size(4).
const writeLobRequestSize = 21

// LobWriteChunk is one chunk of data destined for an open WriteLob locator.
type LobWriteChunk struct {
	ID   LocatorID
	Data []byte
	Eof  bool
}

// WriteLobRequest streams one or more chunks to previously allocated
// locators; an offset of -1 tells the server to append.
type WriteLobRequest struct {
	Chunks []LobWriteChunk
}

func (r *WriteLobRequest) Kind() PartKind { return PkWriteLobRequest }
func (r *WriteLobRequest) NumArg() int    { return len(r.Chunks) }

func (r *WriteLobRequest) Size() int {
	size := 0
	for _, c := range r.Chunks {
		size += writeLobRequestSize + len(c.Data)
	}
	return size
}

func (r *WriteLobRequest) Encode(enc *encoding.Encoder) error {
	for _, c := range r.Chunks {
		enc.Uint64(uint64(c.ID))
		opt := LoDataIncluded
		if c.Eof {
			opt |= LoLastData
		}
		enc.Int8(int8(opt))
		enc.Int64(-1) // offset: -1 means append
		enc.Int32(int32(len(c.Data)))
		enc.Bytes(c.Data)
	}
	return nil
}

func (r *WriteLobRequest) String() string { return fmt.Sprintf("chunks %d", len(r.Chunks)) }

// WriteLobReply returns the locator IDs the server allocated for a prior
// WriteLobRequest (or the parameters of an ExecuteDirect carrying LOB
// parameters), in request order.
type WriteLobReply struct {
	IDs []LocatorID
}

func (r *WriteLobReply) Kind() PartKind { return PkWriteLobReply }

func (r *WriteLobReply) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	numArg := ph.NumArg()
	r.IDs = make([]LocatorID, numArg)
	for i := range r.IDs {
		r.IDs[i] = LocatorID(dec.Uint64())
	}
	return dec.Error()
}

func (r *WriteLobReply) String() string { return fmt.Sprintf("ids %v", r.IDs) }
