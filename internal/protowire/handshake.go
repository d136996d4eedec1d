package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// SwapKind tells the server how the client lays out multi-byte
// integers. Only little-endian clients are produced by this package.
type SwapKind int8

// Recognized swap kinds.
const (
	SwapLittleEndian SwapKind = 1
	SwapBigEndian    SwapKind = 2
)

// version is a major.minor pair; its minor component travels big-endian,
// the one irregularity in an otherwise all-little-endian wire format.
type version struct {
	Major int8
	Minor int16
}

func (v version) encode(enc *encoding.Encoder) {
	enc.Int8(v.Major)
	enc.Int16BE(v.Minor)
}

func (v *version) decode(dec *encoding.Decoder) {
	v.Major = dec.Int8()
	v.Minor = dec.Int16BE()
}

func (v version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// InitRequestSize is the wire size of the initialization request: a
// 4-byte filler distinguishing it from an ordinary MessageHeader (whose
// leading 8 bytes are a session ID, never all-0xFF on a fresh
// connection), the client's product and protocol versions, and a single
// negotiated option (byte order).
const InitRequestSize = 14

// InitRequest is the very first bytes sent on a freshly dialed
// connection, before any MessageHeader-framed exchange. It has no part
// structure of its own.
type InitRequest struct {
	Product  version
	Protocol version
	Swap     SwapKind
}

// NewInitRequest builds the standard request this driver sends: its own
// product/protocol version, little-endian byte order.
func NewInitRequest(productMajor, productMinor, protocolMajor, protocolMinor int) *InitRequest {
	return &InitRequest{
		Product:  version{Major: int8(productMajor), Minor: int16(productMinor)},
		Protocol: version{Major: int8(protocolMajor), Minor: int16(protocolMinor)},
		Swap:     SwapLittleEndian,
	}
}

// Encode writes the initialization request.
func (r *InitRequest) Encode(enc *encoding.Encoder) error {
	for i := 0; i < 4; i++ {
		enc.Byte(0xFF)
	}
	r.Product.encode(enc)
	r.Protocol.encode(enc)
	enc.Byte(0) // reserved
	enc.Int8(1) // numOptions
	enc.Int8(1) // option key: byte order
	enc.Int8(int8(r.Swap))
	return enc.Error()
}

// InitReplySize is the wire size of the initialization reply: the
// server's product and protocol versions plus a 2-byte reserved trailer.
const InitReplySize = 8

// InitReply is the server's answer to InitRequest.
type InitReply struct {
	Product  version
	Protocol version
}

// Decode reads the initialization reply.
func (r *InitReply) Decode(dec *encoding.Decoder) error {
	r.Product.decode(dec)
	r.Protocol.decode(dec)
	dec.Skip(2)
	return dec.Error()
}

func (r *InitReply) String() string {
	return fmt.Sprintf("product %s protocol %s", r.Product, r.Protocol)
}
