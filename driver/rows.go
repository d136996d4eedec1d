package driver

import (
	"bytes"
	"database/sql/driver"
	"io"

	"github.com/hdbconnect/hdbgo/internal/protowire"
	"github.com/hdbconnect/hdbgo/internal/protowire/cesu8"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// rows is the statement engine's paging cursor: an open server-side
// result set plus a decoder positioned over whichever chunk of rows
// was most recently fetched.
type rows struct {
	sess         *session
	id           protowire.ResultSetID
	fields       []*protowire.ResultField
	fetchSize    int32
	lobChunkSize int32

	dec       *encoding.Decoder
	remaining int
	lastPacket bool
	open      bool
}

func newRows(sess *session, fields []*protowire.ResultField, fetchSize, lobChunkSize int32, id protowire.ResultSetID, first *protowire.ResultSetPart) *rows {
	r := &rows{
		sess:         sess,
		id:           id,
		fields:       fields,
		fetchSize:    fetchSize,
		lobChunkSize: lobChunkSize,
	}
	r.applyChunk(first)
	return r
}

func (r *rows) applyChunk(p *protowire.ResultSetPart) {
	r.remaining = p.NumRows
	r.dec = encoding.NewDecoder(bytes.NewReader(p.Data), cesu8.NewDecoder)
	r.lastPacket = p.Attributes.LastPacket()
	r.open = !r.lastPacket
}

// Columns implements driver.Rows.
func (r *rows) Columns() []string {
	cols := make([]string, len(r.fields))
	for i, f := range r.fields {
		cols[i] = f.Name()
	}
	return cols
}

// Close implements driver.Rows. Closing the cursor server-side is
// best-effort (spec.md §4.7): a failure here never surfaces to the
// caller, since the result set is being abandoned anyway.
func (r *rows) Close() error {
	if !r.open {
		return nil
	}
	r.open = false
	if r.sess.isBad() {
		return nil
	}
	if _, err := r.sess.sendRecvLocked(protowire.MtCloseResultSet, false, r.id); err != nil {
		r.sess.logger.Debug("closeResultSet failed", "resultSetID", r.id, "err", err)
	}
	return nil
}

// Next implements driver.Rows, fetching another chunk via FetchNext
// once the current one is exhausted.
func (r *rows) Next(dst []driver.Value) error {
	if r.remaining == 0 {
		if r.lastPacket {
			return io.EOF
		}
		if err := r.fetchNext(); err != nil {
			return err
		}
		if r.remaining == 0 {
			return io.EOF
		}
	}
	for i, f := range r.fields {
		v, err := decodeRowValue(r.dec, f, r.lobChunkSize)
		if err != nil {
			return &DeserializationError{Err: err}
		}
		if descr, ok := v.(*protowire.LobOutDescr); ok {
			v = newLob(r.sess, descr, r.lobChunkSize)
		}
		dst[i] = v
	}
	r.remaining--
	return nil
}

func (r *rows) fetchNext() error {
	reply, err := r.sess.sendRecvLocked(protowire.MtFetchNext, false, r.id, protowire.FetchSize(r.fetchSize))
	if err != nil {
		return err
	}
	rs, ok := reply.find(protowire.PkResultSet).(*protowire.ResultSetPart)
	if !ok {
		return ErrResultSetInconsistent
	}
	if rs.Attributes.ResultSetClosed() && !rs.Attributes.LastPacket() {
		return ErrResultSetInconsistent
	}
	r.applyChunk(rs)
	return nil
}
