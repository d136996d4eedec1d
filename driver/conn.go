package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hdbconnect/hdbgo/driver/wgroup"
	"github.com/hdbconnect/hdbgo/internal/protowire"
)

// ErrUnsupportedIsolationLevel is raised when BeginTx is asked for an
// isolation level the engine has no SET TRANSACTION equivalent for.
var ErrUnsupportedIsolationLevel = errors.New("hdbgo: unsupported isolation level")

// ErrNestedTransaction is raised by BeginTx on a connection that
// already has an open transaction; nesting is not supported.
var ErrNestedTransaction = errors.New("hdbgo: nested transactions are not supported")

const (
	pingQuery = "select 1 from dummy"

	setIsolationLevelReadCommitted  = "set transaction isolation level read committed"
	setIsolationLevelRepeatableRead = "set transaction isolation level repeatable read"
	setIsolationLevelSerializable   = "set transaction isolation level serializable"
	setAccessModeReadOnly           = "set transaction read only"
	setAccessModeReadWrite          = "set transaction read write"
)

// check conn implements all required database/sql/driver interfaces.
var (
	_ driver.Conn               = (*conn)(nil)
	_ driver.ConnPrepareContext = (*conn)(nil)
	_ driver.Pinger             = (*conn)(nil)
	_ driver.ConnBeginTx        = (*conn)(nil)
	_ driver.ExecerContext      = (*conn)(nil)
	_ driver.QueryerContext     = (*conn)(nil)
	_ driver.NamedValueChecker  = (*conn)(nil)
	_ driver.SessionResetter    = (*conn)(nil)
	_ driver.Validator          = (*conn)(nil)
)

// conn is the database/sql/driver.Conn implementation: one session plus
// the wait group used to let in-flight async calls drain on Close.
type conn struct {
	logger  *slog.Logger
	session *session
	wg      *sync.WaitGroup
	inTx    atomic.Bool
}

func newConn(ctx context.Context, cp *ConnectParams, logger *slog.Logger) (*conn, error) {
	sess, err := connectSession(ctx, cp, logger)
	if err != nil {
		return nil, err
	}
	return &conn{logger: logger, session: sess, wg: new(sync.WaitGroup)}, nil
}

// Close implements driver.Conn.
func (c *conn) Close() error { return c.session.close() }

// ResetSession implements driver.SessionResetter.
func (c *conn) ResetSession(ctx context.Context) error {
	if c.session.isBad() {
		return driver.ErrBadConn
	}
	return nil
}

// IsValid implements driver.Validator.
func (c *conn) IsValid() bool { return !c.session.isBad() }

// Ping implements driver.Pinger.
func (c *conn) Ping(ctx context.Context) error {
	var sqlErr error
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		_, sqlErr = c.session.executeDirect(pingQuery)
	})

	select {
	case <-ctx.Done():
		c.session.cancel()
		return ctx.Err()
	case <-done:
		return sqlErr
	}
}

// Prepare implements driver.Conn.
func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext.
func (c *conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var sqlErr error
	var stmt driver.Stmt
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		ps, err := c.session.prepare(query)
		if err != nil {
			sqlErr = err
			return
		}
		stmt = &hdbStmt{conn: c, ps: ps}
	})

	select {
	case <-ctx.Done():
		c.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return stmt, sqlErr
	}
}

// BeginTx implements driver.ConnBeginTx.
func (c *conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.inTx.Load() {
		return nil, ErrNestedTransaction
	}

	var isolationQuery string
	switch sql.IsolationLevel(opts.Isolation) {
	case sql.LevelDefault, sql.LevelReadCommitted:
		isolationQuery = setIsolationLevelReadCommitted
	case sql.LevelRepeatableRead:
		isolationQuery = setIsolationLevelRepeatableRead
	case sql.LevelSerializable:
		isolationQuery = setIsolationLevelSerializable
	default:
		return nil, ErrUnsupportedIsolationLevel
	}
	accessQuery := setAccessModeReadWrite
	if opts.ReadOnly {
		accessQuery = setAccessModeReadOnly
	}

	var sqlErr error
	var t driver.Tx
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		if _, sqlErr = c.session.executeDirect(isolationQuery); sqlErr != nil {
			return
		}
		if _, sqlErr = c.session.executeDirect(accessQuery); sqlErr != nil {
			return
		}
		c.inTx.Store(true)
		t = &tx{conn: c}
	})

	select {
	case <-ctx.Done():
		c.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return t, sqlErr
	}
}

// QueryContext implements driver.QueryerContext. Bound parameters force
// driver.ErrSkip, sending the call through the prepare path instead.
func (c *conn) QueryContext(ctx context.Context, query string, nvargs []driver.NamedValue) (driver.Rows, error) {
	if len(nvargs) != 0 {
		return nil, driver.ErrSkip
	}

	var sqlErr error
	var rws driver.Rows
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		res, err := c.session.executeDirect(query)
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
		c.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return rws, sqlErr
	}
}

// ExecContext implements driver.ExecerContext. Bound parameters force
// driver.ErrSkip, sending the call through the prepare path instead.
func (c *conn) ExecContext(ctx context.Context, query string, nvargs []driver.NamedValue) (driver.Result, error) {
	if len(nvargs) != 0 {
		return nil, driver.ErrSkip
	}

	var sqlErr error
	var result driver.Result
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		res, err := c.session.executeDirect(query)
		if err != nil {
			sqlErr = err
			return
		}
		result = execDriverResult{rowsAffected: res.rowsAffected}
	})

	select {
	case <-ctx.Done():
		c.session.cancel()
		return nil, ctx.Err()
	case <-done:
		return result, sqlErr
	}
}

// CheckNamedValue implements driver.NamedValueChecker: no conversion is
// needed here, ExecContext/QueryContext with parameters always fall
// back to the prepare path via driver.ErrSkip.
func (c *conn) CheckNamedValue(nv *driver.NamedValue) error { return nil }

// execDriverResult adapts a statement's affected-row count to
// driver.Result; the engine has no notion of an identity column, so
// LastInsertId is unsupported.
type execDriverResult struct{ rowsAffected int64 }

func (r execDriverResult) LastInsertId() (int64, error) {
	return 0, errors.New("hdbgo: LastInsertId is not supported")
}
func (r execDriverResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// emptyRows is returned for a direct statement that produced no result
// set (DDL, or DML with no RETURNING clause).
type emptyRows struct{}

func (emptyRows) Columns() []string             { return nil }
func (emptyRows) Close() error                  { return nil }
func (emptyRows) Next(dst []driver.Value) error { return io.EOF }

var _ driver.Tx = (*tx)(nil)

// tx is the driver.Tx implementation: commit/rollback map directly to
// the engine's Commit/Rollback message types.
type tx struct {
	conn   *conn
	closed atomic.Bool
}

func (t *tx) Commit() error   { return t.close(false) }
func (t *tx) Rollback() error { return t.close(true) }

func (t *tx) close(rollback bool) error {
	c := t.conn
	defer c.inTx.Store(false)

	if closed := t.closed.Swap(true); closed {
		return nil
	}
	if c.session.isBad() {
		return driver.ErrBadConn
	}
	msgType := protowire.MtCommit
	if rollback {
		msgType = protowire.MtRollback
	}
	_, err := c.session.sendRecvLocked(msgType, false)
	return err
}
