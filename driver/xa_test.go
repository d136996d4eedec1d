package driver

import (
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire"
)

func TestXaControlRejectsAutoCommit(t *testing.T) {
	s := &session{autoCommit: true}
	if _, err := s.xaControl(protowire.MtXAStart, protowire.Xid{}, protowire.XaFlagNone); err == nil {
		t.Fatal("expected an error when auto-commit is on")
	}
}

func TestLegalXaFlags(t *testing.T) {
	s := &session{autoCommit: false}

	cases := []struct {
		msgType protowire.MessageType
		flags   protowire.XaFlags
		legal   bool
	}{
		{protowire.MtXAStart, protowire.XaFlagJoin, true},
		{protowire.MtXAStart, protowire.XaFlagResume, true},
		{protowire.MtXAStart, protowire.XaFlagOnePhase, false},
		{protowire.MtXAEnd, protowire.XaFlagSuccess, true},
		{protowire.MtXAEnd, protowire.XaFlagFail, true},
		{protowire.MtXAEnd, protowire.XaFlagJoin, false},
		{protowire.MtXACommit, protowire.XaFlagOnePhase, true},
		{protowire.MtXACommit, protowire.XaFlagJoin, false},
		{protowire.MtXARecover, protowire.XaFlagStartRScan, true},
		{protowire.MtXARecover, protowire.XaFlagEndRScan, true},
		{protowire.MtXARecover, protowire.XaFlagFail, false},
	}

	for _, c := range cases {
		mask := legalXaFlags[c.msgType]
		got := c.flags.Only(mask)
		if got != c.legal {
			t.Errorf("msgType %v flags 0x%x: legal=%v, want %v", c.msgType, c.flags, got, c.legal)
		}
	}
	_ = s // only used to document that a real call additionally needs autoCommit off
}

func TestNewXidGeneratesDistinctGtrid(t *testing.T) {
	a := NewXid([]byte("branch"))
	b := NewXid([]byte("branch"))
	if len(a.Gtrid) != 16 {
		t.Fatalf("gtrid length %d, want 16", len(a.Gtrid))
	}
	if string(a.Gtrid) == string(b.Gtrid) {
		t.Fatal("two calls to NewXid produced the same gtrid")
	}
}
