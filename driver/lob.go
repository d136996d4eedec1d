package driver

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/hdbconnect/hdbgo/internal/protowire"
)

// Lob is a streaming handle over an out-of-band BLOB/CLOB/NCLOB value: a
// locator ID, the already-received inline prefix, and a back-reference
// to the session for further ReadLob round trips. It implements
// io.Reader; callers that want the whole value can io.ReadAll it, but
// the point of the type is that they don't have to.
type Lob struct {
	sess       *session
	id         protowire.LocatorID
	isCharLob  bool
	numByte    int64
	numChar    int64
	readLength int32

	buf     []byte
	fetched int64
	eof     bool
}

func newLob(sess *session, descr *protowire.LobOutDescr, readLength int32) *Lob {
	buf := make([]byte, len(descr.Data))
	copy(buf, descr.Data)
	return &Lob{
		sess:       sess,
		id:         descr.ID,
		isCharLob:  descr.IsCharBased,
		numByte:    descr.NumByte,
		numChar:    descr.NumChar,
		readLength: readLength,
		buf:        buf,
		fetched:    int64(len(descr.Data)),
		eof:        descr.Eof(),
	}
}

// NumByte is the LOB's total length in bytes.
func (l *Lob) NumByte() int64 { return l.numByte }

// NumChar is the LOB's total length in characters (valid for
// CLOB/NCLOB; 0 for BLOB).
func (l *Lob) NumChar() int64 { return l.numChar }

// maxBufLen reports the current bound on the local read buffer's
// watermark: it must never exceed the larger of the negotiated read
// length and the server's most recently returned chunk size.
func (l *Lob) maxBufLen() int {
	if int(l.readLength) > len(l.buf) {
		return int(l.readLength)
	}
	return len(l.buf)
}

// Read implements io.Reader, issuing ReadLobRequest round trips as the
// local buffer empties.
func (l *Lob) Read(p []byte) (int, error) {
	for len(l.buf) == 0 && !l.eof {
		if err := l.fetch(); err != nil {
			return 0, err
		}
	}
	if len(l.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, l.buf)
	l.buf = l.buf[n:]
	return n, nil
}

func (l *Lob) fetch() error {
	req := &protowire.ReadLobRequest{ID: l.id, Offset: l.fetched, Length: l.readLength}
	reply, err := l.sess.sendRecvLocked(protowire.MtReadLob, false, req)
	if err != nil {
		return &LobStreamingError{Err: err}
	}
	rr, ok := reply.find(protowire.PkReadLobReply).(*protowire.ReadLobReply)
	if !ok {
		return &LobStreamingError{Err: fmt.Errorf("missing ReadLobReply")}
	}
	l.buf = append(l.buf, rr.Data...)
	l.fetched += int64(len(rr.Data))
	l.eof = rr.Eof
	return nil
}

// SHA256 drains the LOB and returns the SHA-256 of its byte content;
// primarily exercised by round-trip tests.
func (l *Lob) SHA256() ([]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, l); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// writeLob streams src to an already-allocated locator in chunks of at
// most chunkSize bytes, via repeated WriteLobRequest parts, honoring EOF
// on the final chunk.
func writeLob(sess *session, id protowire.LocatorID, src io.Reader, chunkSize int32) error {
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}
	buf := make([]byte, chunkSize)
	for {
		n, readErr := io.ReadFull(src, buf)
		eof := readErr == io.EOF || readErr == io.ErrUnexpectedEOF
		if readErr != nil && !eof {
			return &LobStreamingError{Err: readErr}
		}
		chunk := protowire.LobWriteChunk{ID: id, Data: buf[:n], Eof: eof}
		req := &protowire.WriteLobRequest{Chunks: []protowire.LobWriteChunk{chunk}}
		if _, err := sess.sendRecvLocked(protowire.MtWriteLob, false, req); err != nil {
			return &LobStreamingError{Err: err}
		}
		if eof {
			return nil
		}
	}
}
