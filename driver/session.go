package driver

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/hdbconnect/hdbgo/driver/dial"
	"github.com/hdbconnect/hdbgo/internal/protowire"
	"github.com/hdbconnect/hdbgo/internal/protowire/auth"
	"github.com/hdbconnect/hdbgo/internal/protowire/cesu8"
	"github.com/hdbconnect/hdbgo/internal/protowire/encoding"
)

// protocol identity this driver presents at handshake time.
const (
	productMajor, productMinor   = 4, 20
	protocolMajor, protocolMinor = 4, 20
)

// defaultPacketSize bounds a single request's var-part length; the
// statement engine splits oversized batches across multiple requests
// rather than this layer splitting one request across segments.
const defaultPacketSize = 1 << 20

// sessionState is the per-connection state machine.
type sessionState int32

// Recognized session states.
const (
	stateDisconnected sessionState = iota
	stateTCPReady
	stateHandshakeDone
	stateAuthenticated
	stateReady
	stateInCall
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateTCPReady:
		return "tcpReady"
	case stateHandshakeDone:
		return "handshakeDone"
	case stateAuthenticated:
		return "authenticated"
	case stateReady:
		return "ready"
	case stateInCall:
		return "inCall"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// replyMessage is one decoded reply: its parts, in wire order, plus the
// hard error (if any) found among them.
type replyMessage struct {
	functionCode int16
	parts        []protowire.Part
	serverError  *protowire.ErrorPart // set only when it is not warnings-only
}

func (r *replyMessage) find(kind protowire.PartKind) protowire.Part {
	for _, p := range r.parts {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}

// session is the protocol engine's Session Core: one TCP (or TLS)
// connection, its byte codec, the authenticated identity and the
// exclusive request/reply lock spec.md's thread-safety rule requires.
type session struct {
	logger *slog.Logger

	mu    sync.Mutex // held send->recv across one request/reply cycle
	bad   atomic.Bool
	state sessionState

	conn net.Conn
	enc  *encoding.Encoder
	dec  *encoding.Decoder

	sessionID   int64
	packetCount int32

	productVersion  string
	protocolVersion string
	connectOptions  protowire.Options[protowire.ConnectOption]

	fetchSize     int32
	lobChunkSize  int32
	autoCommit    bool

	warningsMu sync.Mutex
	warnings   []*protowire.ServerError

	clientInfo      protowire.ClientInfo
	clientInfoDirty bool
}

var connSeq atomic.Uint64

func connectSession(ctx context.Context, cp *ConnectParams, logger *slog.Logger) (*session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.Uint64("conn", connSeq.Add(1)))

	nc, err := dial.DefaultDialer.DialContext(ctx, cp.Addr(), dial.DialerOptions{})
	if err != nil {
		return nil, &IOError{Err: err}
	}
	if cp.TLS {
		tlsCfg, err := buildTLSConfig(cp)
		if err != nil {
			nc.Close()
			return nil, err
		}
		tc := tls.Client(nc, tlsCfg)
		if err := tc.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, &IOError{Err: err}
		}
		nc = tc
	}

	s := &session{
		logger:       logger,
		state:        stateTCPReady,
		conn:         nc,
		fetchSize:    128,
		lobChunkSize: 8192,
		autoCommit:   true,
	}
	s.enc = encoding.NewEncoder(s.conn, cesu8.NewEncoder)
	s.dec = encoding.NewDecoder(s.conn, cesu8.NewDecoder)

	if err := s.handshake(); err != nil {
		nc.Close()
		return nil, err
	}
	if err := s.authenticate(cp); err != nil {
		nc.Close()
		return nil, err
	}
	s.state = stateReady
	logger.Debug("session ready", "product", s.productVersion, "protocol", s.protocolVersion)
	return s, nil
}

func (s *session) ioErr(err error) error {
	s.bad.Store(true)
	s.state = stateClosed
	return &IOError{Err: err}
}

func (s *session) protoErr(msg string) error {
	s.bad.Store(true)
	s.state = stateClosed
	return &ProtocolError{Msg: msg}
}

// isBad reports whether the session has been poisoned by a prior fatal
// error and must not be reused.
func (s *session) isBad() bool { return s.bad.Load() || s.state == stateClosed }

// cancel aborts any in-flight wire operation by forcibly closing the
// transport; per spec.md §4.9, cancellation is only honored between
// requests, so a mid-flight cancel poisons the session rather than
// cleanly unwinding it.
func (s *session) cancel() {
	s.bad.Store(true)
	s.conn.Close()
}

func (s *session) close() error {
	if s.isBad() {
		return s.conn.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateClosed
	_ = s.writeRequest(protowire.MtDisconnect, false)
	return s.conn.Close()
}

// handshake performs the pre-framing initialization exchange: a fixed
// byte sequence outside any MessageHeader/SegmentHeader.
func (s *session) handshake() error {
	req := protowire.NewInitRequest(productMajor, productMinor, protocolMajor, protocolMinor)
	if err := req.Encode(s.enc); err != nil {
		return s.ioErr(err)
	}
	rep := &protowire.InitReply{}
	if err := rep.Decode(s.dec); err != nil {
		return s.ioErr(err)
	}
	s.productVersion = rep.Product.String()
	s.protocolVersion = rep.Protocol.String()
	s.state = stateHandshakeDone
	return nil
}

// authenticate drives the two-round-trip SCRAM exchange and records the
// server-assigned session ID and negotiated connect options.
func (s *session) authenticate(cp *ConnectParams) error {
	password := cp.Password.String()
	hs := &protowire.Handshake{
		Username: cp.Username,
		Methods: []auth.Method{
			auth.NewScramPBKDF2SHA256(cp.Username, password),
			auth.NewScramSHA256(cp.Username, password),
		},
	}

	initReq := hs.InitRequest()
	if err := s.writeRequest(protowire.MtAuthenticate, false, initReq); err != nil {
		return err
	}
	initReply, err := s.readReply()
	if err != nil {
		return err
	}
	authReply, ok := initReply.find(protowire.PkAuthentication).(*protowire.AuthenticationReply)
	if !ok {
		return s.protoErr("authentication: missing init reply")
	}
	method, err := hs.SelectMethod(authReply)
	if err != nil {
		return &ConnectionParamsError{Err: err}
	}

	finalReq, err := hs.FinalRequest(method)
	if err != nil {
		return &ConnectionParamsError{Err: err}
	}
	connOpts := &protowire.ConnectOptionsPart{Options: clientConnectOptions(cp)}
	dbConnectInfo := (*protowire.DBConnectInfoPart)(nil)
	if cp.Database != "" {
		dbConnectInfo = &protowire.DBConnectInfoPart{
			Options: protowire.Options[protowire.DBConnectInfoOption]{
				protowire.CiDatabaseName: cp.Database,
			},
		}
	}

	var finalReply *replyMessage
	if dbConnectInfo != nil {
		finalReply, err = s.sendRecvLocked(protowire.MtConnect, false, finalReq, connOpts, dbConnectInfo)
	} else {
		finalReply, err = s.sendRecvLocked(protowire.MtConnect, false, finalReq, connOpts)
	}
	if err != nil {
		return err
	}

	finalAuthReply, ok := finalReply.find(protowire.PkAuthentication).(*protowire.AuthenticationReply)
	if !ok {
		return s.protoErr("authentication: missing final reply")
	}
	if err := hs.FinishFinal(method, finalAuthReply); err != nil {
		return &ConnectionParamsError{Err: fmt.Errorf("server proof check failed: %w", err)}
	}

	if co, ok := finalReply.find(protowire.PkConnectOptions).(*protowire.ConnectOptionsPart); ok {
		s.connectOptions = co.Options
	}
	s.state = stateAuthenticated
	return nil
}

func clientConnectOptions(cp *ConnectParams) protowire.Options[protowire.ConnectOption] {
	opts := protowire.Options[protowire.ConnectOption]{
		protowire.CoDistributionEnabled:     true,
		protowire.CoClientDistributionMode:  protowire.CdmOff,
		protowire.CoSelectForUpdateSupported: true,
		protowire.CoRowSlotImageParameter:   true,
		protowire.CoDataFormatVersion2:      int32(8),
	}
	if cp.ClientLocale != "" {
		opts[protowire.CoClientLocale] = cp.ClientLocale
	}
	if cp.NetworkGroup != "" {
		opts[protowire.CoPrimaryConnectionHost] = cp.NetworkGroup
	}
	return opts
}

// writeRequest frames one request as a single-segment message. Splitting
// an oversized batch across requests is the statement engine's
// responsibility (see stmt.go); this layer always emits exactly one
// segment.
func (s *session) writeRequest(msgType protowire.MessageType, commit bool, parts ...protowire.PartWriter) error {
	if s.isBad() {
		return &IOError{Err: fmt.Errorf("session is closed")}
	}
	s.packetCount++

	varPartLen := 0
	for _, p := range parts {
		varPartLen += protowire.PartHeaderSize + p.Size() + protowire.PadBytes(p.Size())
	}

	mh := &protowire.MessageHeader{
		SessionID:     s.sessionID,
		PacketCount:   s.packetCount,
		VarPartLength: uint32(varPartLen),
		VarPartSize:   uint32(defaultPacketSize),
		NoOfSegments:  1,
	}
	mh.Encode(s.enc)

	sh := &protowire.SegmentHeader{
		SegmentLength: int32(protowire.SegmentHeaderSize + varPartLen),
		SegmentOfs:    0,
		NoOfParts:     int16(len(parts)),
		SegmentNo:     1,
		SegmentKind:   protowire.SkRequest,
		MessageType:   msgType,
		Commit:        commit,
	}
	sh.Encode(s.enc)

	for _, p := range parts {
		ph := &protowire.PartHeader{Kind: p.Kind()}
		if n := p.NumArg(); n > 0 {
			if err := ph.SetNumArg(n); err != nil {
				return &SerializationError{Err: err}
			}
		}
		ph.BufferLength = int32(p.Size())
		ph.BufferSize = int32(p.Size())
		ph.Encode(s.enc)
		if err := p.Encode(s.enc); err != nil {
			return &SerializationError{Err: err}
		}
		s.enc.Zeroes(protowire.PadBytes(p.Size()))
	}

	if err := s.enc.Error(); err != nil {
		return s.ioErr(err)
	}
	return nil
}

// partReaderFor returns a freshly allocated decode target for kind, or
// nil for a part kind this driver does not interpret (skipped by buffer
// length rather than treated as an error).
func partReaderFor(kind protowire.PartKind) protowire.PartReader {
	switch kind {
	case protowire.PkError:
		return &protowire.ErrorPart{}
	case protowire.PkResultSetMetadata:
		return &protowire.ResultSetMetadataPart{}
	case protowire.PkParameterMetadata:
		return &protowire.ParameterMetadataPart{}
	case protowire.PkStatementID:
		return new(protowire.StatementID)
	case protowire.PkResultSetID:
		return new(protowire.ResultSetID)
	case protowire.PkRowsAffected:
		return &protowire.RowsAffected{}
	case protowire.PkAuthentication:
		return &protowire.AuthenticationReply{}
	case protowire.PkConnectOptions:
		return &protowire.ConnectOptionsPart{}
	case protowire.PkTopologyInformation:
		return &protowire.TopologyInformation{}
	case protowire.PkTransactionFlags:
		return &protowire.TransactionFlagsPart{}
	case protowire.PkStatementContext:
		return &protowire.StatementContextPart{}
	case protowire.PkReadLobReply:
		return &protowire.ReadLobReply{}
	case protowire.PkWriteLobReply:
		return &protowire.WriteLobReply{}
	case protowire.PkFindLobReply:
		return &protowire.FindLobReply{}
	case protowire.PkSessionContext:
		return new(protowire.SessionContext)
	case protowire.PkClientInfo:
		return &protowire.ClientInfo{}
	case protowire.PkTableLocation:
		return &protowire.TableLocation{}
	case protowire.PkCommandInfo:
		return &protowire.CommandInfo{}
	case protowire.PkXatOptions:
		return &protowire.XatOptionsPart{}
	case protowire.PkDBConnectInfo:
		return &protowire.DBConnectInfoPart{}
	case protowire.PkStreamData:
		return &protowire.StreamDataPart{}
	case protowire.PkResultSet:
		return &protowire.ResultSetPart{}
	case protowire.PkOutputParameters:
		return &protowire.OutputParametersPart{}
	default:
		return nil
	}
}

// readReply decodes one full reply message, following NoOfSegments and
// merging every segment's parts into a single ordered list.
func (s *session) readReply() (*replyMessage, error) {
	mh := &protowire.MessageHeader{}
	if err := mh.Decode(s.dec); err != nil {
		return nil, s.ioErr(err)
	}
	if mh.PacketCount != s.packetCount {
		return nil, s.protoErr(fmt.Sprintf("sequence mismatch: expected %d got %d", s.packetCount, mh.PacketCount))
	}
	if s.sessionID == 0 {
		s.sessionID = mh.SessionID
	}

	reply := &replyMessage{}
	for seg := int16(0); seg < mh.NoOfSegments; seg++ {
		sh := &protowire.SegmentHeader{}
		if err := sh.Decode(s.dec); err != nil {
			return nil, s.ioErr(err)
		}
		reply.functionCode = sh.FunctionCode
		for i := int16(0); i < sh.NoOfParts; i++ {
			ph := &protowire.PartHeader{}
			if err := ph.Decode(s.dec); err != nil {
				return nil, s.ioErr(err)
			}
			s.dec.ResetCnt()
			if pr := partReaderFor(ph.Kind); pr != nil {
				if err := pr.Decode(s.dec, ph); err != nil {
					return nil, s.ioErr(err)
				}
				reply.parts = append(reply.parts, pr)
			} else {
				s.logger.Debug("skipping unrecognized part", "kind", ph.Kind)
			}
			if rem := int(ph.BufferLength) - s.dec.Cnt(); rem > 0 {
				s.dec.Skip(rem)
			}
			if pad := protowire.PadBytes(int(ph.BufferLength)); pad > 0 {
				s.dec.Skip(pad)
			}
		}
	}
	if err := s.dec.Error(); err != nil {
		return nil, s.ioErr(err)
	}

	if ep, ok := reply.find(protowire.PkError).(*protowire.ErrorPart); ok {
		s.drainWarnings(ep)
		if !ep.HasOnlyWarnings() {
			reply.serverError = ep
		}
	}
	return reply, nil
}

func (s *session) drainWarnings(ep *protowire.ErrorPart) {
	s.warningsMu.Lock()
	defer s.warningsMu.Unlock()
	for _, e := range ep.Errors {
		if e.IsWarning() {
			s.warnings = append(s.warnings, e)
		}
	}
}

// popWarnings returns and clears the accumulated warnings buffer.
func (s *session) popWarnings() []*protowire.ServerError {
	s.warningsMu.Lock()
	defer s.warningsMu.Unlock()
	w := s.warnings
	s.warnings = nil
	return w
}

// sendRecvLocked performs one exclusive request/reply cycle: the lock is
// held from the first byte written to the last byte of the reply read,
// satisfying the no-interleaving rule of spec.md §4.6.
func (s *session) sendRecvLocked(msgType protowire.MessageType, commit bool, parts ...protowire.PartWriter) (*replyMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isBad() {
		return nil, &IOError{Err: fmt.Errorf("session is closed")}
	}
	prev := s.state
	s.state = stateInCall
	defer func() {
		if s.state == stateInCall {
			s.state = prev
		}
	}()

	if err := s.writeRequest(msgType, commit, parts...); err != nil {
		return nil, err
	}
	reply, err := s.readReply()
	if err != nil {
		return nil, err
	}
	if reply.serverError != nil {
		return reply, reply.serverError
	}
	return reply, nil
}
