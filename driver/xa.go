package driver

import (
	"github.com/google/uuid"

	"github.com/hdbconnect/hdbgo/internal/protowire"
)

// NewXid builds a distributed-transaction branch id with a
// freshly-generated global transaction id, for callers that don't
// coordinate Xid allocation with an external transaction manager.
func NewXid(bqual []byte) protowire.Xid {
	id := uuid.New()
	gtrid := id[:]
	return protowire.Xid{FormatID: 0, Gtrid: gtrid, Bqual: bqual}
}

// legalXaFlags bounds the flags a caller may combine for each XA
// control operation; combinations outside the mask are rejected before
// any I/O, per the X/Open CAE XA specification.
var legalXaFlags = map[protowire.MessageType]protowire.XaFlags{
	protowire.MtXAStart: protowire.XaFlagJoin | protowire.XaFlagResume,
	protowire.MtXAEnd:   protowire.XaFlagSuccess | protowire.XaFlagFail | protowire.XaFlagSuspend,
	protowire.MtXAPrepare: protowire.XaFlagNone,
	protowire.MtXACommit:  protowire.XaFlagOnePhase,
	protowire.MtXARollback: protowire.XaFlagNone,
	protowire.MtXAForget:   protowire.XaFlagNone,
	protowire.MtXARecover:  protowire.XaFlagStartRScan | protowire.XaFlagEndRScan,
}

// xaControl runs one XA control message against xid with flags, failing
// fast on a flag combination the operation doesn't accept and rejecting
// the call outright when auto-commit is on (distributed transaction
// boundaries must be managed explicitly).
func (s *session) xaControl(msgType protowire.MessageType, xid protowire.Xid, flags protowire.XaFlags) (*protowire.XatOptionsPart, error) {
	if s.autoCommit {
		return nil, &UsageError{Msg: "xa control call requires auto-commit to be disabled"}
	}
	if mask, ok := legalXaFlags[msgType]; ok && !flags.Only(mask) {
		return nil, &UsageError{Msg: "invalid XA flag combination for this operation"}
	}
	req := &protowire.XatOptionsPart{Xid: xid, Flags: flags}
	reply, err := s.sendRecvLocked(msgType, false, req)
	if err != nil {
		return nil, err
	}
	xo, _ := reply.find(protowire.PkXatOptions).(*protowire.XatOptionsPart)
	return xo, nil
}

func (s *session) xaStart(xid protowire.Xid, flags protowire.XaFlags) error {
	_, err := s.xaControl(protowire.MtXAStart, xid, flags)
	return err
}

func (s *session) xaEnd(xid protowire.Xid, flags protowire.XaFlags) error {
	_, err := s.xaControl(protowire.MtXAEnd, xid, flags)
	return err
}

func (s *session) xaPrepare(xid protowire.Xid) error {
	_, err := s.xaControl(protowire.MtXAPrepare, xid, protowire.XaFlagNone)
	return err
}

func (s *session) xaCommit(xid protowire.Xid, onePhase bool) error {
	flags := protowire.XaFlagNone
	if onePhase {
		flags = protowire.XaFlagOnePhase
	}
	_, err := s.xaControl(protowire.MtXACommit, xid, flags)
	return err
}

func (s *session) xaRollback(xid protowire.Xid) error {
	_, err := s.xaControl(protowire.MtXARollback, xid, protowire.XaFlagNone)
	return err
}

func (s *session) xaForget(xid protowire.Xid) error {
	_, err := s.xaControl(protowire.MtXAForget, xid, protowire.XaFlagNone)
	return err
}

// xaRecover scans in-doubt branches; rscan must start with
// XaFlagStartRScan and callers should keep calling with no flags until
// the returned list stops growing, then finish with XaFlagEndRScan.
func (s *session) xaRecover(flags protowire.XaFlags) ([]protowire.Xid, error) {
	xo, err := s.xaControl(protowire.MtXARecover, protowire.Xid{}, flags)
	if err != nil || xo == nil {
		return nil, err
	}
	return xo.Xids, nil
}
