package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// MessageHeaderSize is the wire size of the outer message header.
const MessageHeaderSize = 32

// MessageHeader wraps one request or reply: a session, a packet/segment
// count and the total variable-part size.
type MessageHeader struct {
	SessionID     int64
	PacketCount   int32
	VarPartLength uint32
	VarPartSize   uint32
	NoOfSegments  int16
}

func (h *MessageHeader) String() string {
	return fmt.Sprintf("session %d packetCount %d varPartLength %d varPartSize %d segments %d",
		h.SessionID, h.PacketCount, h.VarPartLength, h.VarPartSize, h.NoOfSegments)
}

// Encode writes the message header, padding the reserved filler to MessageHeaderSize.
func (h *MessageHeader) Encode(enc *encoding.Encoder) {
	enc.Int64(h.SessionID)
	enc.Int32(h.PacketCount)
	enc.Uint32(h.VarPartLength)
	enc.Uint32(h.VarPartSize)
	enc.Int16(h.NoOfSegments)
	enc.Zeroes(10)
}

// Decode reads the message header.
func (h *MessageHeader) Decode(dec *encoding.Decoder) error {
	h.SessionID = dec.Int64()
	h.PacketCount = dec.Int32()
	h.VarPartLength = dec.Uint32()
	h.VarPartSize = dec.Uint32()
	h.NoOfSegments = dec.Int16()
	dec.Skip(10)
	return dec.Error()
}

// SegmentKind distinguishes request, reply and error segments.
type SegmentKind int8

// Segment kinds.
const (
	SkRequest SegmentKind = 1
	SkReply   SegmentKind = 2
	SkError   SegmentKind = 5
)

func (k SegmentKind) String() string {
	switch k {
	case SkRequest:
		return "request"
	case SkReply:
		return "reply"
	case SkError:
		return "error"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int8(k))
	}
}

// MessageType identifies the request/reply function, e.g. MtExecuteDirect.
type MessageType int8

// Recognized message (function) types.
const (
	MtNil            MessageType = 0
	MtExecuteDirect  MessageType = 2
	MtPrepare        MessageType = 3
	MtAbapStream     MessageType = 4
	MtExecute        MessageType = 13
	MtReadLob        MessageType = 16
	MtWriteLob       MessageType = 17
	MtFindLob        MessageType = 18
	MtAuthenticate   MessageType = 65
	MtConnect        MessageType = 66
	MtCommit         MessageType = 67
	MtRollback       MessageType = 68
	MtCloseResultSet MessageType = 69
	MtDropStatement  MessageType = 70
	MtFetchNext      MessageType = 71
	MtDisconnect     MessageType = 77
	MtXAStart        MessageType = 83
	MtXAEnd          MessageType = 84
	MtXAPrepare      MessageType = 85
	MtXACommit       MessageType = 86
	MtXARollback     MessageType = 87
	MtXARecover      MessageType = 88
	MtXAForget       MessageType = 89
)

func (t MessageType) String() string {
	return fmt.Sprintf("MessageType(%d)", int8(t))
}

// ClientInfoSupported reports whether a ClientInfo part may accompany
// this message type (only statement-executing messages carry it).
func (t MessageType) ClientInfoSupported() bool {
	switch t {
	case MtExecuteDirect, MtExecute, MtPrepare:
		return true
	default:
		return false
	}
}

// SegmentHeaderSize is the wire size of one segment header.
const SegmentHeaderSize = 24

// SegmentHeader precedes the parts of one segment within a message.
type SegmentHeader struct {
	SegmentLength int32
	SegmentOfs    int32
	NoOfParts     int16
	SegmentNo     int16
	SegmentKind   SegmentKind
	MessageType   MessageType
	Commit        bool
	CommandOptions int8
	FunctionCode  int16 // reply only
}

func (h *SegmentHeader) String() string {
	return fmt.Sprintf("segmentLength %d segmentOfs %d noOfParts %d segmentNo %d segmentKind %s messageType %s commit %t",
		h.SegmentLength, h.SegmentOfs, h.NoOfParts, h.SegmentNo, h.SegmentKind, h.MessageType, h.Commit)
}

// Encode writes a request segment header.
func (h *SegmentHeader) Encode(enc *encoding.Encoder) {
	enc.Int32(h.SegmentLength)
	enc.Int32(h.SegmentOfs)
	enc.Int16(h.NoOfParts)
	enc.Int16(h.SegmentNo)
	enc.Int8(int8(h.SegmentKind))
	enc.Int8(int8(h.MessageType))
	enc.Bool(h.Commit)
	enc.Int8(h.CommandOptions)
	enc.Zeroes(8)
}

// Decode reads a segment header (reply or request form, distinguished by SegmentKind).
func (h *SegmentHeader) Decode(dec *encoding.Decoder) error {
	h.SegmentLength = dec.Int32()
	h.SegmentOfs = dec.Int32()
	h.NoOfParts = dec.Int16()
	h.SegmentNo = dec.Int16()
	h.SegmentKind = SegmentKind(dec.Int8())
	switch h.SegmentKind {
	case SkRequest:
		h.MessageType = MessageType(dec.Int8())
		h.Commit = dec.Bool()
		h.CommandOptions = dec.Int8()
		dec.Skip(8)
	default: // reply or error
		dec.Skip(1) // reserved
		h.FunctionCode = dec.Int16()
		dec.Skip(8)
	}
	return dec.Error()
}
