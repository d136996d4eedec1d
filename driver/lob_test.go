package driver

import (
	"crypto/sha256"
	"io"
	"testing"

	"github.com/hdbconnect/hdbgo/internal/protowire"
)

func inlineDescr(data []byte) *protowire.LobOutDescr {
	return &protowire.LobOutDescr{
		IsCharBased: false,
		Opt:         protowire.LoDataIncluded | protowire.LoLastData,
		NumByte:     int64(len(data)),
		Data:        data,
	}
}

func TestLobReadFullyInline(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	l := newLob(nil, inlineDescr(want), 1024)

	got, err := io.ReadAll(l)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	// further reads see a clean EOF, no session round trip attempted
	if _, err := l.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("Read after drain: %v, want io.EOF", err)
	}
}

func TestLobSHA256(t *testing.T) {
	data := []byte("lob payload for hashing")
	l := newLob(nil, inlineDescr(data), 1024)

	got, err := l.SHA256()
	if err != nil {
		t.Fatalf("SHA256: %v", err)
	}
	want := sha256.Sum256(data)
	if string(got) != string(want[:]) {
		t.Fatalf("SHA256 mismatch")
	}
}

func TestLobMaxBufLenWatermark(t *testing.T) {
	data := make([]byte, 4096)
	l := newLob(nil, inlineDescr(data), 512)

	if got := l.maxBufLen(); got != len(data) {
		t.Fatalf("maxBufLen = %d, want %d (inline data exceeds read length)", got, len(data))
	}

	small := []byte("short")
	l2 := newLob(nil, inlineDescr(small), 512)
	if got := l2.maxBufLen(); got != 512 {
		t.Fatalf("maxBufLen = %d, want 512 (read length exceeds inline data)", got)
	}
}

func TestLobNumByteNumChar(t *testing.T) {
	descr := inlineDescr([]byte("abc"))
	descr.NumChar = 3
	descr.IsCharBased = true
	l := newLob(nil, descr, 64)

	if l.NumByte() != 3 {
		t.Fatalf("NumByte() = %d, want 3", l.NumByte())
	}
	if l.NumChar() != 3 {
		t.Fatalf("NumChar() = %d, want 3", l.NumChar())
	}
}
