package auth

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

func fakeSalt() []byte {
	b := make([]byte, saltSize)
	rand.Read(b)
	return b
}

func fakeChallenge(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

func TestClientProofFraming(t *testing.T) {
	key := fakeChallenge(clientProofSize)
	salt := fakeSalt()
	serverChal := fakeChallenge(serverChallengeSize)
	clientChal := fakeChallenge(clientChallengeSize)

	proof := clientProof(key, salt, serverChal, clientChal)
	if len(proof) != clientProofDataSize {
		t.Fatalf("proof length %d, want %d", len(proof), clientProofDataSize)
	}
	if proof[0] != 0 || proof[1] != 1 || proof[2] != clientProofSize {
		t.Fatalf("proof framing header = %v, want [0 1 %d]", proof[:3], clientProofSize)
	}
	if err := checkClientProof(proof); err != nil {
		t.Fatalf("checkClientProof: %v", err)
	}
}

func TestScramSHA256KeyDeterministic(t *testing.T) {
	salt := fakeSalt()
	k1 := scramSHA256Key([]byte("s3cret"), salt)
	k2 := scramSHA256Key([]byte("s3cret"), salt)
	if !bytes.Equal(k1, k2) {
		t.Fatal("scramSHA256Key is not deterministic for the same inputs")
	}
	if bytes.Equal(k1, scramSHA256Key([]byte("other"), salt)) {
		t.Fatal("scramSHA256Key produced the same key for different passwords")
	}
}

func TestScramPBKDF2SHA256KeyDeterministic(t *testing.T) {
	salt := fakeSalt()
	k1 := scramPBKDF2SHA256Key([]byte("s3cret"), salt, 15000)
	k2 := scramPBKDF2SHA256Key([]byte("s3cret"), salt, 15000)
	if !bytes.Equal(k1, k2) {
		t.Fatal("scramPBKDF2SHA256Key is not deterministic for the same inputs")
	}
	if len(k1) != clientProofSize {
		t.Fatalf("derived key length %d, want %d", len(k1), clientProofSize)
	}
	if bytes.Equal(k1, scramPBKDF2SHA256Key([]byte("s3cret"), salt, 20000)) {
		t.Fatal("scramPBKDF2SHA256Key produced the same key for different round counts")
	}
}

func TestCheckSizeValidators(t *testing.T) {
	if err := checkSalt(make([]byte, saltSize-1)); err == nil {
		t.Fatal("checkSalt accepted a short salt")
	}
	if err := checkServerChallenge(make([]byte, serverChallengeSize+1)); err == nil {
		t.Fatal("checkServerChallenge accepted an oversized challenge")
	}
	if err := checkClientProof(make([]byte, clientProofDataSize-1)); err == nil {
		t.Fatal("checkClientProof accepted a short proof")
	}
	if err := checkMethodName("SCRAMSHA256", "SCRAMPBKDF2SHA256"); err == nil {
		t.Fatal("checkMethodName accepted a mismatched name")
	}
}

func TestParamsEncodeSizeMatches(t *testing.T) {
	p := &Params{}
	p.AddString("SCRAMSHA256")
	p.AddBytes(fakeChallenge(clientChallengeSize))
	sub := p.AddParams()
	sub.AddBytes(fakeChallenge(clientProofDataSize))

	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)
	p.Encode(enc)

	if buf.Len() != p.Size() {
		t.Fatalf("encoded %d bytes, Size() reported %d", buf.Len(), p.Size())
	}
}

func TestScramSHA256InitRepDecodeRejectsBadSalt(t *testing.T) {
	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)

	subFields := &Params{}
	subFields.AddBytes(make([]byte, saltSize-1)) // too short
	subFields.AddBytes(fakeChallenge(serverChallengeSize))
	enc.AuthLengthIndicator(subFields.Size())
	subFields.Encode(enc)

	dec := encoding.NewDecoder(&buf, nil)
	m := NewScramSHA256("user", "pass")
	if err := m.InitRepDecode(NewDecoder(dec)); err == nil {
		t.Fatal("InitRepDecode accepted an invalid salt size")
	}
}

func TestScramSHA256RoundTrip(t *testing.T) {
	salt := fakeSalt()
	serverChal := fakeChallenge(serverChallengeSize)

	var buf bytes.Buffer
	enc := encoding.NewEncoder(&buf, nil)
	subFields := &Params{}
	subFields.AddBytes(salt)
	subFields.AddBytes(serverChal)
	enc.AuthLengthIndicator(subFields.Size())
	subFields.Encode(enc)

	dec := encoding.NewDecoder(&buf, nil)
	m := NewScramSHA256("user", "pass")
	if err := m.InitRepDecode(NewDecoder(dec)); err != nil {
		t.Fatalf("InitRepDecode: %v", err)
	}
	if !bytes.Equal(m.salt, salt) || !bytes.Equal(m.serverChal, serverChal) {
		t.Fatal("InitRepDecode did not capture salt/server challenge correctly")
	}

	var fbuf bytes.Buffer
	fenc := encoding.NewEncoder(&fbuf, nil)
	p := &Params{}
	if err := m.PrepareFinalReq(p); err != nil {
		t.Fatalf("PrepareFinalReq: %v", err)
	}
	p.Encode(fenc)
	if fbuf.Len() != p.Size() {
		t.Fatalf("final request encoded %d bytes, Size() reported %d", fbuf.Len(), p.Size())
	}
}
