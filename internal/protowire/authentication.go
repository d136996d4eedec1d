package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/auth"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// AuthenticationRequest carries one Authentication part's worth of fields
// out to the wire (init or final round, depending on how Params was built).
type AuthenticationRequest struct {
	Params *auth.Params
}

func (r *AuthenticationRequest) Kind() PartKind { return PkAuthentication }
func (r *AuthenticationRequest) NumArg() int    { return 1 }
func (r *AuthenticationRequest) Size() int      { return r.Params.Size() }

func (r *AuthenticationRequest) Encode(enc *encoding.Encoder) error {
	r.Params.Encode(enc)
	return enc.Error()
}

func (r *AuthenticationRequest) String() string { return "authentication request" }

// AuthenticationReply exposes the raw field decoder for an Authentication
// reply part; the caller (the active Method) interprets the fields.
type AuthenticationReply struct {
	Fields *auth.Decoder
}

func (r *AuthenticationReply) Kind() PartKind { return PkAuthentication }

func (r *AuthenticationReply) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	r.Fields = auth.NewDecoder(dec)
	return nil
}

func (r *AuthenticationReply) String() string { return "authentication reply" }

// Handshake drives the two authentication round trips (init and final)
// against a single negotiated Method. The caller sends and receives the
// parts itself, so Handshake stays transport-agnostic: it only builds and
// interprets Authentication parts.
type Handshake struct {
	Username string
	Methods  []auth.Method
}

// InitRequest builds the init-round Authentication part: the username
// followed by every candidate method's challenge fields, offered in a
// single round trip so the server can pick the strongest it supports.
func (h *Handshake) InitRequest() *AuthenticationRequest {
	p := &auth.Params{}
	p.AddCESU8String(h.Username)
	for _, m := range h.Methods {
		m.PrepareInitReq(p)
	}
	return &AuthenticationRequest{Params: p}
}

// SelectMethod reads the init reply's selected method name and returns
// the matching Method from Methods, after having it decode its
// method-specific challenge fields.
func (h *Handshake) SelectMethod(reply *AuthenticationReply) (auth.Method, error) {
	d := reply.Fields
	if err := d.NumFields(2); err != nil {
		return nil, err
	}
	name := d.String()
	for _, m := range h.Methods {
		if m.Name() == name {
			if err := m.InitRepDecode(d); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("protowire: server selected unsupported authentication method %s", name)
}

// FinalRequest builds the final-round Authentication part for the
// selected method (its proof fields).
func (h *Handshake) FinalRequest(m auth.Method) (*AuthenticationRequest, error) {
	p := &auth.Params{}
	if err := m.PrepareFinalReq(p); err != nil {
		return nil, err
	}
	return &AuthenticationRequest{Params: p}, nil
}

// FinishFinal lets the selected method validate the final reply
// (typically the server's own proof, ignored by convention).
func (h *Handshake) FinishFinal(m auth.Method, reply *AuthenticationReply) error {
	return m.FinalRepDecode(reply.Fields)
}
