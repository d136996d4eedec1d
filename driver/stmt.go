package driver

import (
	"context"
	"database/sql/driver"

	"github.com/hdbconnect/hdbgo/driver/wgroup"
	"github.com/hdbconnect/hdbgo/internal/protowire"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// parametersPart is the Parameters request part: one or more parameter
// rows, each encoded field-by-field per the prepared statement's
// ParameterMetadata.
type parametersPart struct {
	fields []*protowire.FieldMetadata
	rows   [][]driver.Value
}

func (p *parametersPart) Kind() protowire.PartKind { return protowire.PkParameters }
func (p *parametersPart) NumArg() int              { return len(p.rows) }

func (p *parametersPart) Size() int {
	size := 0
	for _, row := range p.rows {
		for i, v := range row {
			n, err := paramValueSize(p.fields[i], v)
			if err != nil {
				continue
			}
			size += n
		}
	}
	return size
}

func (p *parametersPart) Encode(enc *encoding.Encoder) error {
	for _, row := range p.rows {
		for i, v := range row {
			if err := encodeParamValue(enc, p.fields[i], v); err != nil {
				return err
			}
		}
	}
	return enc.Error()
}

// execResult is the engine's generic execution response: a row count
// and, for statements producing one, an open result set.
type execResult struct {
	rowsAffected int64
	rows         *rows
}

func buildExecResult(sess *session, reply *replyMessage) (*execResult, error) {
	res := &execResult{}
	var fields []*protowire.ResultField
	var rsID protowire.ResultSetID
	var rsPart *protowire.ResultSetPart

	for _, p := range reply.parts {
		switch pp := p.(type) {
		case *protowire.ResultSetMetadataPart:
			fields = pp.Fields
		case *protowire.ResultSetID:
			rsID = *pp
		case *protowire.ResultSetPart:
			rsPart = pp
		case *protowire.RowsAffected:
			res.rowsAffected = pp.Total()
		}
	}
	if rsPart != nil {
		res.rows = newRows(sess, fields, sess.fetchSize, sess.lobChunkSize, rsID, rsPart)
	}
	return res, nil
}

// executeDirect runs one-shot SQL text with no bound parameters.
func (s *session) executeDirect(query string) (*execResult, error) {
	parts := []protowire.PartWriter{protowire.FetchSize(s.fetchSize)}
	if s.clientInfoDirty && len(s.clientInfo) > 0 {
		parts = append(parts, s.clientInfo)
		s.clientInfoDirty = false
	}
	parts = append(parts, protowire.Command(query))

	reply, err := s.sendRecvLocked(protowire.MtExecuteDirect, s.autoCommit, parts...)
	if err != nil {
		return nil, err
	}
	return buildExecResult(s, reply)
}

// preparedStatement is the handle returned by Prepare: a server-side
// statement ID plus its parameter and result-set metadata.
type preparedStatement struct {
	sess         *session
	id           protowire.StatementID
	query        string
	paramFields  []*protowire.FieldMetadata
	resultFields []*protowire.ResultField
}

func (s *session) prepare(query string) (*preparedStatement, error) {
	reply, err := s.sendRecvLocked(protowire.MtPrepare, false, protowire.Command(query))
	if err != nil {
		return nil, err
	}
	ps := &preparedStatement{sess: s, query: query}
	for _, p := range reply.parts {
		switch pp := p.(type) {
		case *protowire.StatementID:
			ps.id = *pp
		case *protowire.ParameterMetadataPart:
			ps.paramFields = pp.Fields
		case *protowire.ResultSetMetadataPart:
			ps.resultFields = pp.Fields
		}
	}
	return ps, nil
}

// numInput reports the number of IN/INOUT parameters, the driver.Stmt
// contract's NumInput value.
func (ps *preparedStatement) numInput() int {
	n := 0
	for _, f := range ps.paramFields {
		if f.Mode&protowire.PmIn != 0 || f.Mode&protowire.PmInout != 0 {
			n++
		}
	}
	return n
}

// execute runs the prepared statement once per row of rows, splitting
// the batch across multiple Execute requests whenever the accumulated
// parameter payload would exceed the connection's packet size.
func (ps *preparedStatement) execute(rowsIn [][]driver.Value) (*execResult, error) {
	if len(ps.paramFields) == 0 || len(rowsIn) == 0 {
		reply, err := ps.sess.sendRecvLocked(protowire.MtExecute, ps.sess.autoCommit, protowire.StatementID(ps.id))
		if err != nil {
			return nil, err
		}
		return buildExecResult(ps.sess, reply)
	}

	var total int64
	var lastRows *rows
	batch := make([][]driver.Value, 0, len(rowsIn))
	batchSize := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		pp := &parametersPart{fields: ps.paramFields, rows: batch}
		reply, err := ps.sess.sendRecvLocked(protowire.MtExecute, ps.sess.autoCommit, protowire.StatementID(ps.id), pp)
		if err != nil {
			return err
		}
		res, err := buildExecResult(ps.sess, reply)
		if err != nil {
			return err
		}
		total += res.rowsAffected
		if res.rows != nil {
			lastRows = res.rows
		}
		batch = batch[:0]
		batchSize = 0
		return nil
	}

	for _, row := range rowsIn {
		rowSize := 0
		for i, v := range row {
			n, err := paramValueSize(ps.paramFields[i], v)
			if err != nil {
				return nil, &SerializationError{Err: err}
			}
			rowSize += n
		}
		if batchSize+rowSize > defaultPacketSize && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, row)
		batchSize += rowSize
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return &execResult{rowsAffected: total, rows: lastRows}, nil
}

// close drops the server-side statement handle. Failure is swallowed
// with a trace log; cleanup is best-effort (spec.md §4.7).
func (ps *preparedStatement) close() error {
	if ps.sess.isBad() {
		return nil
	}
	if _, err := ps.sess.sendRecvLocked(protowire.MtDropStatement, false, protowire.StatementID(ps.id)); err != nil {
		ps.sess.logger.Debug("dropStatement failed", "statementID", ps.id, "err", err)
	}
	return nil
}

var (
	_ driver.Stmt              = (*hdbStmt)(nil)
	_ driver.StmtExecContext   = (*hdbStmt)(nil)
	_ driver.StmtQueryContext  = (*hdbStmt)(nil)
	_ driver.NamedValueChecker = (*hdbStmt)(nil)
)

// hdbStmt adapts a preparedStatement to database/sql/driver.Stmt,
// applying the same async-with-cancellation pattern as conn.
type hdbStmt struct {
	conn *conn
	ps   *preparedStatement
}

func (s *hdbStmt) Close() error { return s.ps.close() }
func (s *hdbStmt) NumInput() int { return s.ps.numInput() }

func (s *hdbStmt) CheckNamedValue(nv *driver.NamedValue) error { return nil }

// row builds one parameter row from args, leaving pure OUT parameters
// unset; IN and INOUT parameters consume args in declaration order.
func (s *hdbStmt) row(args []driver.NamedValue) []driver.Value {
	row := make([]driver.Value, len(s.ps.paramFields))
	ai := 0
	for i, f := range s.ps.paramFields {
		if f.Mode&protowire.PmOut != 0 && f.Mode&protowire.PmInout == 0 {
			continue
		}
		if ai < len(args) {
			row[i] = args[ai].Value
			ai++
		}
	}
	return row
}

func (s *hdbStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *hdbStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *hdbStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	row := s.row(args)
	var sqlErr error
	var result driver.Result
	done := make(chan struct{})
	wgroup.Go(s.conn.wg, func() {
		defer close(done)
		res, err := s.ps.execute([][]driver.Value{row})
		if err != nil {
			sqlErr = err
			return
		}
		result = execDriverResult{rowsAffected: res.rowsAffected}
	})

	select {
	case <-ctx.Done():
		s.conn.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return result, sqlErr
	}
}

func (s *hdbStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	row := s.row(args)
	var sqlErr error
	var rws driver.Rows
	done := make(chan struct{})
	wgroup.Go(s.conn.wg, func() {
		defer close(done)
		res, err := s.ps.execute([][]driver.Value{row})
		if err != nil {
			sqlErr = err
			return
		}
		if res.rows != nil {
			rws = res.rows
		} else {
			rws = emptyRows{}
		}
	})

	select {
	case <-ctx.Done():
		s.conn.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return rws, sqlErr
	}
}

func valuesToNamed(args []driver.Value) []driver.NamedValue {
	nv := make([]driver.NamedValue, len(args))
	for i, v := range args {
		nv[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return nv
}
