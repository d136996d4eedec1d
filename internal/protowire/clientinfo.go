package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/cesu8"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// ClientInfo is a set of application-supplied key/value annotations
// (APPLICATION, APPLICATIONUSER, ...) attached to statement-executing
// requests; each key and value is a length-indicator-prefixed CESU-8 string.
type ClientInfo map[string]string

func (c ClientInfo) Kind() PartKind { return PkClientInfo }
func (c ClientInfo) NumArg() int    { return len(c) }

func (c ClientInfo) Size() int {
	size := 0
	for k, v := range c {
		size += varCESU8Size(k) + varCESU8Size(v)
	}
	return size
}

func varCESU8Size(s string) int {
	n := cesu8.StringSize(s)
	switch {
	case n <= 245:
		return n + 1
	case n <= 0xFFFF:
		return n + 3
	default:
		return n + 5
	}
}

func (c ClientInfo) Encode(enc *encoding.Encoder) error {
	for k, v := range c {
		enc.LengthIndicator(cesu8.StringSize(k))
		enc.CESU8String(k)
		enc.LengthIndicator(cesu8.StringSize(v))
		enc.CESU8String(v)
	}
	return enc.Error()
}

// Decode reads numArg key/value pairs into a freshly allocated map.
func (c *ClientInfo) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	m := make(ClientInfo, ph.NumArg())
	for i := 0; i < ph.NumArg(); i++ {
		k, err := decodeCESU8String(dec)
		if err != nil {
			return err
		}
		v, err := decodeCESU8String(dec)
		if err != nil {
			return err
		}
		m[k] = v
	}
	*c = m
	return dec.Error()
}

func decodeCESU8String(dec *encoding.Decoder) (string, error) {
	n, ok := dec.LengthIndicator()
	if !ok {
		return "", nil
	}
	b, err := dec.CESU8Bytes(n)
	if err != nil {
		return "", fmt.Errorf("protowire: decoding CESU-8 string: %w", err)
	}
	return string(b), nil
}

func (c ClientInfo) String() string { return fmt.Sprintf("clientInfo %v", map[string]string(c)) }
