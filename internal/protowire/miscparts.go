package protowire

import (
	"fmt"
	"sort"

	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// Rows-affected sentinel values.
const (
	RaSuccessNoInfo   int32 = -2
	RaExecutionFailed int32 = -3
)

// RowsAffected reports, per executed statement in a batch, the number of
// rows it affected (or one of the RaXxx sentinels).
type RowsAffected struct{ Rows []int32 }

func (r *RowsAffected) Kind() PartKind { return PkRowsAffected }

func (r *RowsAffected) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	r.Rows = make([]int32, ph.NumArg())
	for i := range r.Rows {
		r.Rows[i] = dec.Int32()
	}
	return dec.Error()
}

// Total sums the non-negative entries (sentinels are excluded).
func (r *RowsAffected) Total() int64 {
	var total int64
	for _, n := range r.Rows {
		if n > 0 {
			total += int64(n)
		}
	}
	return total
}

func (r *RowsAffected) String() string { return fmt.Sprintf("%v", r.Rows) }

// Command carries the SQL text of a direct-execute request.
type Command string

func (c Command) Kind() PartKind { return PkCommand }
func (c Command) NumArg() int    { return 1 }
func (c Command) Size() int      { return len(c) }
func (c Command) Encode(enc *encoding.Encoder) error {
	enc.String(string(c))
	return enc.Error()
}
func (c Command) String() string { return string(c) }

// StatementID identifies a prepared statement for Execute/DropStatementId.
type StatementID uint64

func (StatementID) Kind() PartKind { return PkStatementID }
func (id StatementID) NumArg() int { return 1 }
func (id StatementID) Size() int   { return 8 }
func (id StatementID) Encode(enc *encoding.Encoder) error {
	enc.Uint64(uint64(id))
	return enc.Error()
}
func (id *StatementID) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	*id = StatementID(dec.Uint64())
	return dec.Error()
}
func (id StatementID) String() string { return fmt.Sprintf("%d", uint64(id)) }

// ResultSetID identifies an open cursor for FetchNext/CloseResultSet.
type ResultSetID uint64

func (ResultSetID) Kind() PartKind { return PkResultSetID }
func (id ResultSetID) NumArg() int { return 1 }
func (id ResultSetID) Size() int   { return 8 }
func (id ResultSetID) Encode(enc *encoding.Encoder) error {
	enc.Uint64(uint64(id))
	return enc.Error()
}
func (id *ResultSetID) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	*id = ResultSetID(dec.Uint64())
	return dec.Error()
}
func (id ResultSetID) String() string { return fmt.Sprintf("%d", uint64(id)) }

// FetchSize requests the row count for the next FetchNext chunk.
type FetchSize int32

func (FetchSize) Kind() PartKind { return PkFetchSize }
func (s FetchSize) NumArg() int  { return 1 }
func (s FetchSize) Size() int    { return 4 }
func (s FetchSize) Encode(enc *encoding.Encoder) error {
	enc.Int32(int32(s))
	return enc.Error()
}
func (s FetchSize) String() string { return fmt.Sprintf("%d", int32(s)) }

// ClientID is the process-identifying string sent once per session
// (PID@hostname, by convention).
type ClientID string

func (ClientID) Kind() PartKind { return PkClientID }
func (c ClientID) NumArg() int  { return 1 }
func (c ClientID) Size() int    { return len(c) }
func (c ClientID) Encode(enc *encoding.Encoder) error {
	enc.String(string(c))
	return enc.Error()
}
func (c ClientID) String() string { return string(c) }

// TopologyOption keys one entry of a TopologyInformation host descriptor.
type TopologyOption int8

// Recognized topology options.
const (
	ToHostName         TopologyOption = 1
	ToHostPortNumber   TopologyOption = 2
	ToTenantName       TopologyOption = 3
	ToLoadFactor       TopologyOption = 4
	ToVolumeID         TopologyOption = 5
	ToIsPrimary        TopologyOption = 6
	ToIsCurrentSession TopologyOption = 7
	ToServiceType      TopologyOption = 8
	ToIsStandby        TopologyOption = 10
	ToSiteType         TopologyOption = 13
)

// ServiceType identifies the server process role behind a topology entry.
type ServiceType int32

// Recognized service types.
const (
	StNameServer   ServiceType = 1
	StIndexServer  ServiceType = 3
	StXSEngine     ServiceType = 5
	StDPServer     ServiceType = 8
	StDIServer     ServiceType = 9
	StComputeServer ServiceType = 10
)

// TopologyInformation reports, per known landscape host, a bag of
// options describing its role and reachability; used for client-side
// load balancing and failover.
type TopologyInformation struct {
	Hosts []map[TopologyOption]any
}

func (t *TopologyInformation) Kind() PartKind { return PkTopologyInformation }

func (t *TopologyInformation) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	t.Hosts = make([]map[TopologyOption]any, ph.NumArg())
	for i := range t.Hosts {
		ops := make(map[TopologyOption]any)
		t.Hosts[i] = ops
		n := int(dec.Int16())
		for j := 0; j < n; j++ {
			k := TopologyOption(dec.Int8())
			tc := TypeCode(dec.Byte())
			v, err := decodeOptValue(dec, tc)
			if err != nil {
				return err
			}
			ops[k] = v
		}
	}
	return dec.Error()
}

func (t *TopologyInformation) String() string {
	s := make([]string, 0, len(t.Hosts))
	for _, ops := range t.Hosts {
		keys := make([]int, 0, len(ops))
		for k := range ops {
			keys = append(keys, int(k))
		}
		sort.Ints(keys)
		s = append(s, fmt.Sprintf("%v", keys))
	}
	return fmt.Sprintf("%v", s)
}
