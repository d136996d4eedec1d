// Package driver implements a database/sql/driver for the protocol
// described by this module: a native, non-cgo client for a
// column-oriented relational database speaking a private binary wire
// protocol.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
)

// DriverName is the name this package registers itself under via
// database/sql.Register.
const DriverName = "hdbgo"

func init() {
	sql.Register(DriverName, &Driver{})
}

var _ driver.Driver = (*Driver)(nil)
var _ driver.DriverContext = (*Driver)(nil)

// Driver is the database/sql/driver.Driver implementation. Callers that
// want a *Connector without going through a DSN string should use
// NewConnector directly.
type Driver struct{}

// Open implements driver.Driver via a throwaway Connector.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	c, err := NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext.
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	return NewConnector(dsn)
}

var _ driver.Connector = (*Connector)(nil)

// Connector is a reusable, pre-validated set of connection parameters:
// unlike a DSN string, it can carry a Password value and a custom
// logger without re-parsing on every Connect call.
type Connector struct {
	cp     *ConnectParams
	logger *slog.Logger
}

// NewConnector parses dsn once and returns a reusable Connector.
func NewConnector(dsn string) (*Connector, error) {
	cp, err := Parse(dsn)
	if err != nil {
		return nil, err
	}
	return &Connector{cp: cp, logger: slog.Default()}, nil
}

// NewConnectorWithParams builds a Connector from an already-constructed
// ConnectParams, bypassing DSN parsing entirely.
func NewConnectorWithParams(cp *ConnectParams) *Connector {
	return &Connector{cp: cp, logger: slog.Default()}
}

// WithLogger returns a copy of c logging through logger.
func (c *Connector) WithLogger(logger *slog.Logger) *Connector {
	return &Connector{cp: c.cp, logger: logger}
}

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	return newConn(ctx, c.cp, c.logger)
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver { return &Driver{} }
