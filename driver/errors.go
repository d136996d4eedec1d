package driver

import (
	"errors"
	"fmt"

	"github.com/hdbconnect/hdbgo/internal/protowire"
)

// ErrFatal marks a session as unrecoverable: the connection is broken
// and must be closed. errors.Is(err, ErrFatal) tests for it.
var ErrFatal = errors.New("fatal error")

// UsageError reports a caller mistake caught before any I/O (an invalid
// XA flag combination, a missing DSN host, a query method used where an
// exec method was required).
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "usage error: " + e.Msg }

// ConnectionParamsError reports a DSN that failed to parse or validate.
type ConnectionParamsError struct {
	Err error
}

func (e *ConnectionParamsError) Error() string { return fmt.Sprintf("connection params: %s", e.Err) }
func (e *ConnectionParamsError) Unwrap() error { return e.Err }

// IOError reports a transport failure. The session it occurred on is
// poisoned.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error: %s", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrFatal }

// ProtocolError reports a malformed frame, an unexpected reply type, a
// sequence-number mismatch, or a server-initiated session close. The
// session it occurred on is poisoned.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "protocol error: " + e.Msg }
func (e *ProtocolError) Is(target error) bool { return target == ErrFatal }

// ErrResultSetInconsistent is a ProtocolError raised when a ResultSet
// part carries RESULTSET_CLOSED without LAST_PACKET: the combination
// documentation suggests is reachable after a server-initiated close,
// but which this driver treats as a protocol violation rather than
// silently ending the fetch (see DESIGN.md open-question decision).
var ErrResultSetInconsistent = &ProtocolError{Msg: "resultset closed without last packet"}

// DeserializationError reports a row-value or LOB conversion failure.
// The session remains healthy.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string { return fmt.Sprintf("deserialization error: %s", e.Err) }
func (e *DeserializationError) Unwrap() error { return e.Err }

// SerializationError reports a parameter-binding conversion failure.
// The session remains healthy.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return fmt.Sprintf("serialization error: %s", e.Err) }
func (e *SerializationError) Unwrap() error { return e.Err }

// LobStreamingError reports an I/O failure while transferring a LOB body.
type LobStreamingError struct {
	Err error
}

func (e *LobStreamingError) Error() string { return fmt.Sprintf("lob streaming error: %s", e.Err) }
func (e *LobStreamingError) Unwrap() error { return e.Err }

// ExecutionResultsError reports a batch execution that partially
// failed; Results holds one RaXxx sentinel or affected-row count per
// statement in the batch.
type ExecutionResultsError struct {
	Results []int32
}

func (e *ExecutionResultsError) Error() string {
	return fmt.Sprintf("execution results error: %v", e.Results)
}

// serverError wraps a *protowire.ServerError in the error interface
// this package promises callers (Code/Position/Level/Text/IsWarning...
// accessors are already exported on ServerError itself).
type serverError = protowire.ServerError
