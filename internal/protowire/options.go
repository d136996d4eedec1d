package protowire

import (
	"fmt"
	"sort"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// Options is a generic key/typed-value map, the wire shape shared by
// ConnectOptions, ClientContext, DBConnectInfo, StatementContext and
// TransactionFlags: each entry is an int8 key, a TypeCode byte, then the
// value encoded per that type code.
type Options[K ~int8] map[K]any

func (ops Options[K]) String() string {
	s := make([]string, 0, len(ops))
	for k, v := range ops {
		s = append(s, fmt.Sprintf("%d: %v", k, v))
	}
	sort.Strings(s)
	return fmt.Sprintf("%v", s)
}

func (ops Options[K]) Size() int {
	size := 2 * len(ops) // key byte + type-code byte, per entry
	for _, v := range ops {
		size += optValueSize(v)
	}
	return size
}

func (ops Options[K]) NumArg() int { return len(ops) }

// Decode reads numArg key/typed-value entries into a freshly allocated map.
func (ops *Options[K]) Decode(dec *encoding.Decoder, numArg int) error {
	m := make(Options[K], numArg)
	for i := 0; i < numArg; i++ {
		k := K(dec.Int8())
		tc := TypeCode(dec.Byte())
		v, err := decodeOptValue(dec, tc)
		if err != nil {
			return err
		}
		m[k] = v
	}
	*ops = m
	return dec.Error()
}

// Encode writes every entry as key byte, inferred type-code byte, value.
func (ops Options[K]) Encode(enc *encoding.Encoder) error {
	for k, v := range ops {
		tc, err := optTypeCode(v)
		if err != nil {
			return err
		}
		enc.Int8(int8(k))
		enc.Int8(int8(tc))
		encodeOptValue(enc, v)
	}
	return nil
}

// AsString type-asserts a string-valued entry, returning "" if absent.
func (ops Options[K]) AsString(k K) string {
	if v, ok := ops[k]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AsBool type-asserts a bool-valued entry.
func (ops Options[K]) AsBool(k K) bool {
	if v, ok := ops[k]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// AsInt32 type-asserts an int32-valued entry.
func (ops Options[K]) AsInt32(k K) int32 {
	if v, ok := ops[k]; ok {
		if i, ok := v.(int32); ok {
			return i
		}
	}
	return 0
}

// optTypeCode infers the wire TypeCode to tag an option value with, from
// its Go type (the inverse of decodeOptValue's switch on TypeCode).
func optTypeCode(v any) (TypeCode, error) {
	switch v.(type) {
	case bool:
		return TCBoolean, nil
	case int32:
		return TCInteger, nil
	case int64:
		return TCBigint, nil
	case float64:
		return TCDouble, nil
	case string:
		return TCString, nil
	case []byte:
		return TCBstring, nil
	default:
		return 0, fmt.Errorf("protowire: unsupported option value type %T", v)
	}
}

func optValueSize(v any) int {
	n := 0
	switch v := v.(type) {
	case bool:
		return 1
	case int32:
		return 4
	case int64:
		return 8
	case float64:
		return 8
	case string:
		n = len(v) // ASCII option values
	case []byte:
		n = len(v)
	default:
		return 0
	}
	// length indicator (1, 3 or 5 bytes, as Encoder.LengthIndicator writes it) + bytes
	switch {
	case n <= 245:
		return 1 + n
	case n <= 0xFFFF:
		return 3 + n
	default:
		return 5 + n
	}
}

func encodeOptValue(enc *encoding.Encoder, v any) {
	switch v := v.(type) {
	case bool:
		enc.Bool(v)
	case int32:
		enc.Int32(v)
	case int64:
		enc.Int64(v)
	case float64:
		enc.Float64(v)
	case string:
		enc.LengthIndicator(len(v))
		enc.String(v)
	case []byte:
		enc.LengthIndicator(len(v))
		enc.Bytes(v)
	}
}

func decodeOptValue(dec *encoding.Decoder, tc TypeCode) (any, error) {
	switch tc {
	case TCBoolean:
		return dec.Bool(), nil
	case TCTinyint:
		return int32(dec.Byte()), nil
	case TCInteger:
		return dec.Int32(), nil
	case TCBigint:
		return dec.Int64(), nil
	case TCDouble:
		return dec.Float64(), nil
	case TCString, TCBstring:
		n, ok := dec.LengthIndicator()
		if !ok {
			return "", nil
		}
		b := make([]byte, n)
		dec.Bytes(b)
		return string(b), nil
	default:
		return nil, fmt.Errorf("protowire: unsupported option type code %s", tc)
	}
}

// ConnectOption keys the options exchanged in the ConnectOptions part
// during session setup (locale, wire/data-format negotiation, server
// capability flags).
type ConnectOption int8

// Recognized connect options.
const (
	CoConnectionID               ConnectOption = 1
	CoCompleteArrayExecution     ConnectOption = 2
	CoClientLocale               ConnectOption = 3
	CoSupportsLargeBulkOperations ConnectOption = 4
	CoDistributionEnabled        ConnectOption = 5
	CoPrimaryConnectionID        ConnectOption = 6
	CoPrimaryConnectionHost      ConnectOption = 7
	CoPrimaryConnectionPort      ConnectOption = 8
	CoCompleteArrayExecution2    ConnectOption = 9
	CoDistributionProtocolVersion ConnectOption = 10
	CoSplitBatchCommands         ConnectOption = 11
	CoUseTransactionFlagsOnly    ConnectOption = 12
	CoRowSlotImageParameter      ConnectOption = 13
	CoIgnoreUnknownParts         ConnectOption = 14
	CoDataFormatVersion2         ConnectOption = 15
	CoItabParameter              ConnectOption = 16
	CoDescribeTableOutputParameterName ConnectOption = 17
	CoColumnarResultSet          ConnectOption = 18
	CoScrollableResultSet        ConnectOption = 19
	CoClientDistributionMode     ConnectOption = 20
	CoEngineDataFormatVersion    ConnectOption = 21
	CoDistributionType           ConnectOption = 22
	CoSelectForUpdateSupported   ConnectOption = 23
	CoClientQueryTimeoutSupported ConnectOption = 24
	CoFullVersionString          ConnectOption = 25
	CoDatabaseName               ConnectOption = 26
	CoBuildPlatform              ConnectOption = 27
	CoImplicitLobStreaming       ConnectOption = 28
)

// ClientDistributionMode values for CoClientDistributionMode.
const (
	CdmOff                   int32 = 0
	CdmConnection            int32 = 1
	CdmStatement             int32 = 2
	CdmConnectionStatement   int32 = 3
)

// ClientContextOption keys the options exchanged in the ClientContext part.
type ClientContextOption int8

// Recognized client context options.
const (
	CcoClientVersion            ClientContextOption = 1
	CcoClientType               ClientContextOption = 2
	CcoClientApplicationProgram ClientContextOption = 3
)

// DBConnectInfoOption keys the options exchanged in the DBConnectInfo part
// (tenant database lookup against a system database, in MDC setups).
type DBConnectInfoOption int8

// Recognized DBConnectInfo options.
const (
	CiDatabaseName DBConnectInfoOption = 1
	CiHost         DBConnectInfoOption = 2
	CiPort         DBConnectInfoOption = 3
	CiIsConnected  DBConnectInfoOption = 4
)

// StatementContextOption keys the options exchanged in the StatementContext
// part (server-side execution accounting, echoed back after most requests).
type StatementContextOption int8

// Recognized statement context options.
const (
	ScStatementSequenceInfo  StatementContextOption = 1
	ScServerExecutionTime    StatementContextOption = 2
	ScServerCPUTime          StatementContextOption = 3
	ScServerMemoryUsage      StatementContextOption = 4
)

// TransactionFlagOption keys the flags exchanged in the TransactionFlags part.
type TransactionFlagOption int8

// Recognized transaction flags.
const (
	TfRolledback                     TransactionFlagOption = 0
	TfCommitted                      TransactionFlagOption = 1
	TfNewIsolationLevel              TransactionFlagOption = 2
	TfDDLCommitModeChanged           TransactionFlagOption = 3
	TfWriteTransactionStarted        TransactionFlagOption = 4
	TfNoWriteTransactionStarted      TransactionFlagOption = 5
	TfSessionClosingTransactionError TransactionFlagOption = 6
	TfReadOnlyMode                   TransactionFlagOption = 8
)
