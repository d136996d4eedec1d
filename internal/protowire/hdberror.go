package protowire

import (
	"fmt"
	"strings"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// ErrorLevel classifies a server-reported error's severity.
type ErrorLevel int8

// Recognized error levels.
const (
	ErrorLevelWarning    ErrorLevel = 0
	ErrorLevelError      ErrorLevel = 1
	ErrorLevelFatalError ErrorLevel = 2
)

var errorLevelNames = [...]string{"Warning", "Error", "FatalError"}

func (l ErrorLevel) String() string {
	if int(l) < 0 || int(l) >= len(errorLevelNames) {
		return fmt.Sprintf("ErrorLevel(%d)", int8(l))
	}
	return errorLevelNames[l]
}

const sqlStateSize = 5

// errorFixLength is the byte size of an error entry's fixed-width fields:
// code(4) + position(4) + textLength(4) + level(1) + sqlState(5).
const errorFixLength = 18

// ServerError is a single error or warning entry returned by the server.
type ServerError struct {
	Code        int32
	Position    int32
	Level       ErrorLevel
	SQLState    [sqlStateSize]byte
	Text        string
	StatementNo int
}

func (e *ServerError) Error() string {
	if e.StatementNo > 0 {
		return fmt.Sprintf("SQL %s %d - %s (statement no: %d)", e.Level, e.Code, e.Text, e.StatementNo)
	}
	return fmt.Sprintf("SQL %s %d - %s", e.Level, e.Code, e.Text)
}

func (e *ServerError) String() string {
	return fmt.Sprintf("code %d position %d level %s sqlState %s text %s",
		e.Code, e.Position, e.Level, e.SQLState, e.Text)
}

func (e *ServerError) IsWarning() bool { return e.Level == ErrorLevelWarning }
func (e *ServerError) IsError() bool   { return e.Level == ErrorLevelError }
func (e *ServerError) IsFatal() bool   { return e.Level == ErrorLevelFatalError }

// ErrorPart is the Error reply part: one or more ServerError entries,
// produced instead of (or alongside) the expected reply parts when a
// request fails.
type ErrorPart struct {
	Errors []*ServerError
}

func (p *ErrorPart) Kind() PartKind { return PkError }

// Decode follows the server's error-entry quirk: when exactly one error is
// reported, its buffer is one byte longer than the fixed fields plus text
// (a stray trailing byte, not 8-byte padding); with more than one error,
// each entry is padded to the usual 8-byte segment boundary.
func (p *ErrorPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	numArg := ph.NumArg()
	p.Errors = make([]*ServerError, numArg)

	for i := 0; i < numArg; i++ {
		e := new(ServerError)
		p.Errors[i] = e

		e.Code = dec.Int32()
		e.Position = dec.Int32()
		textLen := dec.Int32()
		e.Level = ErrorLevel(dec.Int8())
		dec.Bytes(e.SQLState[:])

		text := make([]byte, int(textLen))
		dec.Bytes(text)
		e.Text = string(text)

		if numArg == 1 {
			dec.Skip(1)
			break
		}
		if pad := PadBytes(errorFixLength + int(textLen)); pad != 0 {
			dec.Skip(pad)
		}
	}
	return dec.Error()
}

// Error implements the error interface, joining every entry's message.
func (p *ErrorPart) Error() string {
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}
	s := make([]string, len(p.Errors))
	for i, e := range p.Errors {
		s[i] = e.Error()
	}
	return strings.Join(s, "; ")
}

// HasOnlyWarnings reports whether every entry is a warning (so the
// request otherwise succeeded).
func (p *ErrorPart) HasOnlyWarnings() bool {
	for _, e := range p.Errors {
		if !e.IsWarning() {
			return false
		}
	}
	return len(p.Errors) > 0
}

// SetStatementNoOffset adds ofs to every entry's statement number, used
// to translate batch-local indices into the caller's absolute indices.
func (p *ErrorPart) SetStatementNoOffset(ofs int) {
	for _, e := range p.Errors {
		e.StatementNo += ofs
	}
}

func (p *ErrorPart) String() string {
	s := make([]string, len(p.Errors))
	for i, e := range p.Errors {
		s[i] = e.String()
	}
	return strings.Join(s, " ")
}
