package protowire

import (
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// XaFlags are the standard X/Open XA flags, passed through unchanged to
// the server in a XatOptions part.
type XaFlags int32

// Standard XA flags (X/Open CAE XA specification).
const (
	XaFlagNone         XaFlags = 0x00000000
	XaFlagJoin         XaFlags = 0x00200000
	XaFlagResume       XaFlags = 0x08000000
	XaFlagSuccess      XaFlags = 0x04000000
	XaFlagFail         XaFlags = 0x20000000
	XaFlagSuspend      XaFlags = 0x02000000
	XaFlagOnePhase     XaFlags = 0x40000000
	XaFlagStartRScan   XaFlags = 0x01000000
	XaFlagEndRScan     XaFlags = 0x00800000
)

func (f XaFlags) has(mask XaFlags) bool { return f&mask != 0 }

// Only reports whether f's set bits are all contained in mask, i.e. f is
// a valid combination for an operation whose legal flags are mask.
func (f XaFlags) Only(mask XaFlags) bool { return f&^mask == 0 }

// Xid is a distributed-transaction branch identifier: a global
// transaction id, a branch qualifier and a format id, per the X/Open XA
// specification.
type Xid struct {
	FormatID int32
	Gtrid    []byte
	Bqual    []byte
}

func (x Xid) encode(enc *encoding.Encoder) {
	enc.Int32(x.FormatID)
	enc.Int32(int32(len(x.Gtrid)))
	enc.Int32(int32(len(x.Bqual)))
	enc.Bytes(x.Gtrid)
	enc.Bytes(x.Bqual)
}

func (x *Xid) decode(dec *encoding.Decoder) {
	x.FormatID = dec.Int32()
	gLen := dec.Int32()
	bLen := dec.Int32()
	x.Gtrid = make([]byte, gLen)
	x.Bqual = make([]byte, bLen)
	dec.Bytes(x.Gtrid)
	dec.Bytes(x.Bqual)
}

func (x Xid) xidSize() int { return 12 + len(x.Gtrid) + len(x.Bqual) }

func (x Xid) String() string {
	return fmt.Sprintf("formatID %d gtrid %x bqual %x", x.FormatID, x.Gtrid, x.Bqual)
}

// XaOption keys a XatOptions part entry.
type XaOption int8

// Recognized XatOptions entries.
const (
	XoFlags       XaOption = 1
	XoReturnCode  XaOption = 2
	XoXid         XaOption = 3
	XoXidCount    XaOption = 4
)

// XatOptionsPart carries XA control metadata for xa_start/end/prepare/
// commit/rollback/forget/recover: the target branch id and flags on
// request, a return code (and, for recover, the in-doubt branch list) on
// reply.
type XatOptionsPart struct {
	Flags      XaFlags
	ReturnCode int32
	Xid        Xid
	Xids       []Xid // populated only by an XARecover reply
}

func (p *XatOptionsPart) Kind() PartKind { return PkXatOptions }
func (p *XatOptionsPart) NumArg() int    { return 1 }

func (p *XatOptionsPart) Size() int {
	size := 2                       // entry count
	size += 2 + 1 + p.Xid.xidSize() // xid entry: key+type + length-indicator + payload
	if p.Flags != XaFlagNone {
		size += 2 + 4 // flags entry: key+type + int32
	}
	return size
}

func (p *XatOptionsPart) Encode(enc *encoding.Encoder) error {
	n := int16(1)
	if p.Flags != XaFlagNone {
		n++
	}
	enc.Int16(n)

	enc.Int8(int8(XoXid))
	enc.Int8(int8(TCBstring))
	enc.LengthIndicator(p.Xid.xidSize())
	p.Xid.encode(enc)

	if p.Flags != XaFlagNone {
		enc.Int8(int8(XoFlags))
		enc.Int8(int8(TCInteger))
		enc.Int32(int32(p.Flags))
	}
	return enc.Error()
}

func (p *XatOptionsPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	n := int(dec.Int16())
	for i := 0; i < n; i++ {
		k := XaOption(dec.Int8())
		tc := TypeCode(dec.Byte())
		switch k {
		case XoFlags:
			v, err := decodeOptValue(dec, tc)
			if err != nil {
				return err
			}
			p.Flags = XaFlags(v.(int32))
		case XoReturnCode:
			v, err := decodeOptValue(dec, tc)
			if err != nil {
				return err
			}
			p.ReturnCode = v.(int32)
		case XoXid:
			sz, ok := dec.LengthIndicator()
			if !ok {
				continue
			}
			_ = sz
			p.Xid.decode(dec)
		case XoXidCount:
			cnt, err := decodeOptValue(dec, tc)
			if err != nil {
				return err
			}
			count := int(cnt.(int32))
			p.Xids = make([]Xid, count)
			for j := range p.Xids {
				p.Xids[j].decode(dec)
			}
		default:
			return fmt.Errorf("protowire: unknown XatOptions entry %d", k)
		}
	}
	return dec.Error()
}

func (p *XatOptionsPart) String() string {
	return fmt.Sprintf("xid %s flags 0x%x returnCode %d", p.Xid, p.Flags, p.ReturnCode)
}
