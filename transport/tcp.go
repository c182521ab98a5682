package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/topicsender/protocol"
)

type peerState int

const (
	peerUnknown peerState = iota
	peerOpen
	peerClosed
	peerReset
)

// aLongTimeAgo is a deadline in the past, used to unblock pending I/O
var aLongTimeAgo = time.Unix(1, 0)

// TCP runs single request/response exchanges. It holds no connection state
// between calls and is safe for concurrent use.
type TCP struct {
	timeouts Timeouts
	dialer   Dialer
	trace    bool
	log      *zap.Logger
}

func NewTCP(options Options) *TCP {
	dialer := options.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &TCP{
		timeouts: options.Timeouts.withDefaults(),
		dialer:   dialer,
		trace:    options.Trace,
		log:      log,
	}
}

func (t *TCP) Timeouts() Timeouts {
	return t.timeouts
}

// Exchange connects to addr, writes packet, reads one framed response and
// disconnects. Each phase gets its own timeout, composed with ctx.
//
// A response cut short by the peer closing is returned without error. Once
// ctx is done nothing is returned but the error.
func (t *TCP) Exchange(ctx context.Context, addr string, packet []byte) ([]byte, error) {
	e := &exchange{
		ctx:      ctx,
		addr:     addr,
		timeouts: t.timeouts,
		dialer:   t.dialer,
		log:      t.log.With(zap.String("addr", addr)),
	}

	defer e.close()

	if t.trace {
		e.log.Debug("Exchange",
			zap.Duration("connectTimeout", t.timeouts.Connect),
			zap.Duration("sendTimeout", t.timeouts.Send),
			zap.Duration("receiveTimeout", t.timeouts.Receive),
			zap.Duration("disconnectTimeout", t.timeouts.Disconnect),
			zap.String("raw", base64.StdEncoding.EncodeToString(packet)))
	}

	if err := e.run(PhaseConnecting, t.timeouts.Connect, e.connect); err != nil {
		return nil, err
	}

	if err := e.run(PhaseSending, t.timeouts.Send, func(ctx context.Context) error {
		return e.send(packet)
	}); err != nil {
		return nil, err
	}

	if err := e.run(PhaseReceiving, t.timeouts.Receive, func(ctx context.Context) error {
		return e.receive()
	}); err != nil {
		return nil, err
	}

	if e.peer == peerReset {
		e.log.Debug("Peer reset the connection after a complete reply, skipping disconnect")
	} else if err := e.run(PhaseDisconnecting, t.timeouts.Disconnect, func(ctx context.Context) error {
		return e.disconnect()
	}); err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}

		// The reply is already in hand
		e.log.Warn("Failed to disconnect cleanly", zap.Error(err))
	}

	if t.trace {
		e.log.Debug("Received", zap.String("raw", base64.StdEncoding.EncodeToString(e.received)))
	}

	return e.received, nil
}

type exchange struct {
	ctx      context.Context
	addr     string
	timeouts Timeouts
	dialer   Dialer
	log      *zap.Logger

	state    Phase
	conn     net.Conn
	received []byte
	peer     peerState
}

// run executes one phase under a scope derived from the caller's context and
// the phase timeout. The connection deadline follows the scope, so a timer
// left over from one phase never reaches the next.
func (e *exchange) run(phase Phase, timeout time.Duration, fn func(ctx context.Context) error) error {
	e.state = phase

	if err := e.ctx.Err(); err != nil {
		return e.classify(e.ctx, err)
	}

	ctx, cancel := context.WithTimeout(e.ctx, timeout)
	defer cancel()

	if e.conn != nil {
		deadline, _ := ctx.Deadline()
		if err := e.conn.SetDeadline(deadline); err != nil {
			return e.classify(ctx, err)
		}

		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			defer close(fired)
			_ = e.conn.SetDeadline(aLongTimeAgo)
		})

		defer func() {
			if !stop() {
				<-fired
			}
		}()
	}

	if err := fn(ctx); err != nil {
		return e.classify(ctx, err)
	}

	return nil
}

func (e *exchange) classify(ctx context.Context, err error) error {
	var phaseErr *PhaseError
	if errors.As(err, &phaseErr) {
		return err
	}

	switch {
	case e.callerDone():
		cause := e.ctx.Err()
		if cause == nil {
			cause = context.DeadlineExceeded
		}
		return &PhaseError{Phase: e.state, Kind: ErrCancelled, Err: cause}

	case ctx.Err() != nil, errors.Is(err, os.ErrDeadlineExceeded):
		return &PhaseError{Phase: e.state, Kind: ErrTimeout, Err: context.DeadlineExceeded}

	default:
		return &PhaseError{Phase: e.state, Kind: ErrTransport, Err: err}
	}
}

// callerDone reports whether the caller's context is finished, including a
// caller deadline that the connection noticed before the context timer did.
func (e *exchange) callerDone() bool {
	if e.ctx.Err() != nil {
		return true
	}

	deadline, ok := e.ctx.Deadline()
	return ok && !time.Now().Before(deadline)
}

func (e *exchange) connect(ctx context.Context) error {
	conn, err := e.dialer.DialContext(ctx, "tcp", e.addr)
	if err != nil {
		return err
	}

	e.conn = conn
	return nil
}

func (e *exchange) send(packet []byte) error {
	for offset, chunk := 0, 1; offset < len(packet); chunk++ {
		if chunk > 1 {
			e.log.Debug("Send chunk", zap.Int("chunk", chunk), zap.Int("offset", offset))
		}

		n, err := e.conn.Write(packet[offset:])
		offset += n
		if err != nil {
			return err
		}
	}

	return nil
}

// receive reads a header sized buffer, then grows it to the packet length
// declared by the header and keeps reading until it is full or the peer
// closes.
func (e *exchange) receive() error {
	buf := make([]byte, protocol.HeaderLength)
	offset := 0
	resolved := false

	for chunk := 1; offset < len(buf); chunk++ {
		if chunk > 1 {
			e.log.Debug("Receive chunk", zap.Int("chunk", chunk), zap.Int("offset", offset))
		}

		n, err := e.conn.Read(buf[offset:])
		offset += n

		if errors.Is(err, io.EOF) {
			e.log.Debug("Zero bytes read before expected length",
				zap.Int("offset", offset),
				zap.Int("expected", len(buf)))
			break
		}

		if err != nil {
			return err
		}

		if resolved || offset < protocol.HeaderLength {
			continue
		}

		resolved = true

		header := protocol.ParseHeader(buf[:offset])
		if !header.Valid() {
			e.log.Debug("Response header has no signature", zap.Binary("header", buf[:offset]))
			continue
		}

		packetLength, ok := header.PacketLength()
		if !ok {
			return &PhaseError{
				Phase: PhaseReceiving,
				Kind:  protocol.ErrProtocol,
				Err:   fmt.Errorf("declared packet length exceeds %d", math.MaxUint16),
			}
		}

		if int(packetLength) > len(buf) {
			grown := make([]byte, packetLength)
			copy(grown, buf[:offset])
			buf = grown
		}
	}

	e.received = buf[:offset]

	if !resolved || offset < len(buf) {
		return nil
	}

	peer, err := peek(e.conn)
	if err != nil {
		return err
	}

	e.peer = peer
	return nil
}

func (e *exchange) disconnect() (err error) {
	if cw, ok := e.conn.(interface{ CloseWrite() error }); ok {
		if cerr := cw.CloseWrite(); cerr != nil && !errors.Is(cerr, syscall.ENOTCONN) {
			err = multierr.Append(err, cerr)
		}
	}

	// Wait for the peer to hang up
	if _, derr := io.Copy(io.Discard, e.conn); derr != nil {
		err = multierr.Append(err, derr)
	}

	return err
}

func (e *exchange) close() {
	e.state = PhaseClosed

	if e.conn == nil {
		return
	}

	if err := e.conn.Close(); err != nil {
		e.log.Debug("Failed to close connection", zap.Error(err))
	}
}
