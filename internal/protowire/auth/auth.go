// Package auth implements the authentication methods exchanged inside
// AUTHENTICATION parts during session handshake: SCRAM-SHA-256 and
// SCRAM-PBKDF2-SHA-256 password authentication.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"unicode/utf8"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// Method drives one authentication mechanism through its two round trips:
// an init request/reply exchanging challenges, and a final request/reply
// exchanging proofs.
type Method interface {
	Name() string
	Order() byte
	PrepareInitReq(p *Params)
	InitRepDecode(d *Decoder) error
	PrepareFinalReq(p *Params) error
	FinalRepDecode(d *Decoder) error
}

// Params builds one Authentication part's field list: a flat sequence of
// byte-string, CESU-8-string and nested sub-parameter-list fields, each
// length-prefixed with the auth-field dialect (see Decoder.AuthLengthIndicator).
type Params struct {
	fields []any // []byte, string (CESU-8) or *Params
}

// AddBytes appends an opaque byte-string field.
func (p *Params) AddBytes(b []byte) { p.fields = append(p.fields, b) }

// AddString appends an ASCII field, encoded like a byte string.
func (p *Params) AddString(s string) { p.fields = append(p.fields, []byte(s)) }

// AddCESU8String appends a field transcoded to CESU-8 on the wire.
func (p *Params) AddCESU8String(s string) { p.fields = append(p.fields, cesu8Field(s)) }

type cesu8Field string

// AddParams appends a nested sub-parameter list and returns it for filling in.
func (p *Params) AddParams() *Params {
	sub := &Params{}
	p.fields = append(p.fields, sub)
	return sub
}

func (p *Params) size() int {
	size := 2 // field count
	for _, f := range p.fields {
		switch v := f.(type) {
		case []byte:
			size += authFieldSize(len(v))
		case cesu8Field:
			size += authFieldSize(cesu8Size(string(v)))
		case *Params:
			sub := v.size()
			size += authFieldSize(sub)
		}
	}
	return size
}

func authFieldSize(n int) int {
	if n < 0xFF {
		return n + 1
	}
	return n + 3
}

// Encode writes the field count followed by each field.
func (p *Params) Encode(enc *encoding.Encoder) {
	enc.Int16(int16(len(p.fields)))
	for _, f := range p.fields {
		switch v := f.(type) {
		case []byte:
			enc.AuthLengthIndicator(len(v))
			enc.Bytes(v)
		case cesu8Field:
			enc.AuthLengthIndicator(cesu8Size(string(v)))
			enc.CESU8String(string(v))
		case *Params:
			enc.AuthLengthIndicator(v.size())
			v.Encode(enc)
		}
	}
}

// Size returns the wire size of this field list, including its own
// 2-byte field count but excluding the length prefix under which a
// caller embeds it.
func (p *Params) Size() int { return p.size() }

// cesu8Size returns the CESU-8 byte length of s without importing the
// cesu8 package: a BMP rune takes its UTF-8 width, a supplementary-plane
// rune takes 6 bytes (a surrogate pair of 3-byte sequences).
func cesu8Size(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r > 0xFFFF:
			n += 6
		default:
			n += utf8.RuneLen(r)
		}
	}
	return n
}

// Decoder reads one Authentication part's field list.
type Decoder struct{ d *encoding.Decoder }

// NewDecoder wraps a raw part decoder for Authentication-field reads.
func NewDecoder(d *encoding.Decoder) *Decoder { return &Decoder{d: d} }

// NumFields reads and validates the field count.
func (a *Decoder) NumFields(expected int) error {
	n := int(a.d.Int16())
	if n != expected {
		return fmt.Errorf("auth: unexpected field count %d, want %d", n, expected)
	}
	return nil
}

// Bytes reads one byte-string field.
func (a *Decoder) Bytes() []byte {
	n := a.d.AuthLengthIndicator()
	b := make([]byte, n)
	a.d.Bytes(b)
	return b
}

// String reads one ASCII field.
func (a *Decoder) String() string { return string(a.Bytes()) }

// SubSize reads the length prefix of a nested sub-parameter list and
// returns its byte size (the caller then reads NumFields/fields from
// the same stream; the size is informational, framing is implicit).
func (a *Decoder) SubSize() int { return a.d.AuthLengthIndicator() }

// BigEndianUint32 reads a 4-byte big-endian uint32 field (used for the
// PBKDF2 round count), validating its declared length.
func (a *Decoder) BigEndianUint32() (uint32, error) {
	n := a.d.AuthLengthIndicator()
	if n != 4 {
		return 0, fmt.Errorf("auth: unexpected uint32 field size %d, want 4", n)
	}
	b := make([]byte, 4)
	a.d.Bytes(b)
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Error forwards the underlying decoder's sticky error.
func (a *Decoder) Error() error { return a.d.Error() }

const (
	clientChallengeSize = 64
	saltSize            = 16
	serverChallengeSize = 64
	clientProofDataSize = 35
	clientProofSize     = 32
)

func newClientChallenge() []byte {
	r := make([]byte, clientChallengeSize)
	if _, err := rand.Read(r); err != nil {
		panic("auth: failed to read random client challenge: " + err.Error())
	}
	return r
}

func checkSalt(salt []byte) error {
	if len(salt) != saltSize {
		return fmt.Errorf("auth: invalid salt size %d, want %d", len(salt), saltSize)
	}
	return nil
}

func checkServerChallenge(b []byte) error {
	if len(b) != serverChallengeSize {
		return fmt.Errorf("auth: invalid server challenge size %d, want %d", len(b), serverChallengeSize)
	}
	return nil
}

func checkClientProof(b []byte) error {
	if len(b) != clientProofDataSize {
		return fmt.Errorf("auth: invalid client proof size %d, want %d", len(b), clientProofDataSize)
	}
	return nil
}

func checkMethodName(got, want string) error {
	if got != want {
		return fmt.Errorf("auth: unexpected method name %s, want %s", got, want)
	}
	return nil
}

// clientProof computes the SCRAM client proof from a derived key and the
// salt/server-challenge/client-challenge exchanged during the init round
// trip, in the wire's "0, 1, clientProofSize, proof" sub-field framing.
func clientProof(key, salt, serverChallenge, clientChallenge []byte) []byte {
	buf := make([]byte, 0, len(salt)+len(serverChallenge)+len(clientChallenge))
	buf = append(buf, salt...)
	buf = append(buf, serverChallenge...)
	buf = append(buf, clientChallenge...)

	sig := hmacSHA256(sha256Sum(key), buf)
	proof := xor(sig, key)

	out := make([]byte, clientProofDataSize)
	out[0] = 0
	out[1] = 1
	out[2] = clientProofSize
	copy(out[3:], proof)
	return out
}

func sha256Sum(p []byte) []byte {
	h := sha256.Sum256(p)
	return h[:]
}

func hmacSHA256(key, p []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(p)
	return h.Sum(nil)
}

func xor(a, b []byte) []byte {
	r := make([]byte, len(a))
	for i := range a {
		r[i] = a[i] ^ b[i]
	}
	return r
}
