package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	methodNameSCRAMSHA256       = "SCRAMSHA256"
	methodNameSCRAMPBKDF2SHA256 = "SCRAMPBKDF2SHA256"

	orderSCRAMSHA256       = 2
	orderSCRAMPBKDF2SHA256 = 1 // preferred over plain SCRAM-SHA-256 when both are offered
)

// ScramSHA256 implements SCRAM-SHA-256 password authentication.
type ScramSHA256 struct {
	username, password string
	clientChallenge     []byte
	salt, serverChal    []byte
	clientProof         []byte
}

// NewScramSHA256 returns a method ready to authenticate username/password.
func NewScramSHA256(username, password string) *ScramSHA256 {
	return &ScramSHA256{username: username, password: password, clientChallenge: newClientChallenge()}
}

func (m *ScramSHA256) Name() string { return methodNameSCRAMSHA256 }
func (m *ScramSHA256) Order() byte  { return orderSCRAMSHA256 }

func (m *ScramSHA256) PrepareInitReq(p *Params) {
	p.AddString(m.Name())
	p.AddBytes(m.clientChallenge)
}

func (m *ScramSHA256) InitRepDecode(d *Decoder) error {
	d.SubSize()
	if err := d.NumFields(2); err != nil {
		return err
	}
	m.salt = d.Bytes()
	m.serverChal = d.Bytes()
	if err := checkSalt(m.salt); err != nil {
		return err
	}
	return checkServerChallenge(m.serverChal)
}

func (m *ScramSHA256) PrepareFinalReq(p *Params) error {
	key := scramSHA256Key([]byte(m.password), m.salt)
	m.clientProof = clientProof(key, m.salt, m.serverChal, m.clientChallenge)
	if err := checkClientProof(m.clientProof); err != nil {
		return err
	}
	p.AddCESU8String(m.username)
	p.AddString(m.Name())
	sub := p.AddParams()
	sub.AddBytes(m.clientProof)
	return nil
}

func (m *ScramSHA256) FinalRepDecode(d *Decoder) error {
	if err := d.NumFields(2); err != nil {
		return err
	}
	name := d.String()
	if err := checkMethodName(name, m.Name()); err != nil {
		return err
	}
	if d.SubSize() == 0 {
		return nil // server omits its own proof for this method
	}
	if err := d.NumFields(1); err != nil {
		return err
	}
	d.Bytes() // server proof: not independently verified, mirrors upstream
	return d.Error()
}

func scramSHA256Key(password, salt []byte) []byte {
	return sha256Sum(hmacSHA256(password, salt))
}

// ScramPBKDF2SHA256 implements SCRAM-PBKDF2-SHA-256 password authentication,
// the rounds-strengthened variant negotiated when the server supports it.
type ScramPBKDF2SHA256 struct {
	username, password string
	clientChallenge     []byte
	salt, serverChal    []byte
	clientProof         []byte
	rounds              uint32
}

// NewScramPBKDF2SHA256 returns a method ready to authenticate username/password.
func NewScramPBKDF2SHA256(username, password string) *ScramPBKDF2SHA256 {
	return &ScramPBKDF2SHA256{username: username, password: password, clientChallenge: newClientChallenge()}
}

func (m *ScramPBKDF2SHA256) Name() string { return methodNameSCRAMPBKDF2SHA256 }
func (m *ScramPBKDF2SHA256) Order() byte  { return orderSCRAMPBKDF2SHA256 }

func (m *ScramPBKDF2SHA256) PrepareInitReq(p *Params) {
	p.AddString(m.Name())
	p.AddBytes(m.clientChallenge)
}

func (m *ScramPBKDF2SHA256) InitRepDecode(d *Decoder) error {
	d.SubSize()
	if err := d.NumFields(3); err != nil {
		return err
	}
	m.salt = d.Bytes()
	m.serverChal = d.Bytes()
	if err := checkSalt(m.salt); err != nil {
		return err
	}
	if err := checkServerChallenge(m.serverChal); err != nil {
		return err
	}
	rounds, err := d.BigEndianUint32()
	if err != nil {
		return err
	}
	m.rounds = rounds
	return nil
}

func (m *ScramPBKDF2SHA256) PrepareFinalReq(p *Params) error {
	key := scramPBKDF2SHA256Key([]byte(m.password), m.salt, int(m.rounds))
	m.clientProof = clientProof(key, m.salt, m.serverChal, m.clientChallenge)
	if err := checkClientProof(m.clientProof); err != nil {
		return err
	}
	p.AddCESU8String(m.username)
	p.AddString(m.Name())
	sub := p.AddParams()
	sub.AddBytes(m.clientProof)
	return nil
}

func (m *ScramPBKDF2SHA256) FinalRepDecode(d *Decoder) error {
	if err := d.NumFields(2); err != nil {
		return err
	}
	name := d.String()
	if err := checkMethodName(name, m.Name()); err != nil {
		return err
	}
	d.SubSize()
	if err := d.NumFields(1); err != nil {
		return err
	}
	d.Bytes()
	return d.Error()
}

func scramPBKDF2SHA256Key(password, salt []byte, rounds int) []byte {
	return sha256Sum(pbkdf2.Key(password, salt, rounds, clientProofSize, sha256.New))
}
