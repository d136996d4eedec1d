package protowire

import "github.com/hdbconnect/hdbgo/internal/protowire/encoding"

// ConnectOptionsPart is the ConnectOptions request/reply part.
type ConnectOptionsPart struct{ Options Options[ConnectOption] }

func (p *ConnectOptionsPart) Kind() PartKind { return PkConnectOptions }
func (p *ConnectOptionsPart) NumArg() int    { return p.Options.NumArg() }
func (p *ConnectOptionsPart) Size() int      { return p.Options.Size() }
func (p *ConnectOptionsPart) Encode(enc *encoding.Encoder) error { return p.Options.Encode(enc) }
func (p *ConnectOptionsPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	return p.Options.Decode(dec, ph.NumArg())
}
func (p *ConnectOptionsPart) String() string { return p.Options.String() }

// ClientContextPart is the ClientContext request part (client version,
// type and application program name, sent once at connect time).
type ClientContextPart struct{ Options Options[ClientContextOption] }

func (p *ClientContextPart) Kind() PartKind { return PkClientContext }
func (p *ClientContextPart) NumArg() int    { return p.Options.NumArg() }
func (p *ClientContextPart) Size() int      { return p.Options.Size() }
func (p *ClientContextPart) Encode(enc *encoding.Encoder) error { return p.Options.Encode(enc) }
func (p *ClientContextPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	return p.Options.Decode(dec, ph.NumArg())
}
func (p *ClientContextPart) String() string { return p.Options.String() }

// DBConnectInfoPart is the DBConnectInfo request/reply part, used to ask
// a system database where a named tenant database listens.
type DBConnectInfoPart struct{ Options Options[DBConnectInfoOption] }

func (p *DBConnectInfoPart) Kind() PartKind { return PkDBConnectInfo }
func (p *DBConnectInfoPart) NumArg() int    { return p.Options.NumArg() }
func (p *DBConnectInfoPart) Size() int      { return p.Options.Size() }
func (p *DBConnectInfoPart) Encode(enc *encoding.Encoder) error { return p.Options.Encode(enc) }
func (p *DBConnectInfoPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	return p.Options.Decode(dec, ph.NumArg())
}
func (p *DBConnectInfoPart) String() string { return p.Options.String() }

// StatementContextPart is the StatementContext reply part, echoed back
// after most requests with server-side accounting data.
type StatementContextPart struct{ Options Options[StatementContextOption] }

func (p *StatementContextPart) Kind() PartKind { return PkStatementContext }
func (p *StatementContextPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	return p.Options.Decode(dec, ph.NumArg())
}
func (p *StatementContextPart) String() string { return p.Options.String() }

// TransactionFlagsPart is the TransactionFlags reply part, reporting
// server-side transaction-state transitions triggered by a request.
type TransactionFlagsPart struct{ Options Options[TransactionFlagOption] }

func (p *TransactionFlagsPart) Kind() PartKind { return PkTransactionFlags }
func (p *TransactionFlagsPart) Decode(dec *encoding.Decoder, ph *PartHeader) error {
	return p.Options.Decode(dec, ph.NumArg())
}
func (p *TransactionFlagsPart) String() string { return p.Options.String() }
