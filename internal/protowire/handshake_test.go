package protowire

import (
	"bytes"
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

func TestInitRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)

	req := NewInitRequest(4, 20, 4, 20)
	if err := req.Encode(enc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() != InitRequestSize {
		t.Fatalf("request size %d, want %d", buf.Len(), InitRequestSize)
	}
	for _, b := range buf.Bytes()[:4] {
		if b != 0xFF {
			t.Fatalf("filler byte %#x, want 0xff", b)
		}
	}
	if req.Swap != SwapLittleEndian {
		t.Fatalf("default swap kind %v, want SwapLittleEndian", req.Swap)
	}
}

func TestInitReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)

	want := version{Major: 2, Minor: 11}
	want.encode(enc)
	want.encode(enc) // product, then protocol
	enc.Int16BE(0)   // 2 reserved bytes

	dec := encoding.NewDecoder(&buf, nil)
	rep := &InitReply{}
	if err := rep.Decode(dec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Product != want || rep.Protocol != want {
		t.Fatalf("got product %v protocol %v, want %v", rep.Product, rep.Protocol, want)
	}
}
