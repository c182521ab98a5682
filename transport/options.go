package transport

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
)

// Timeouts bounds each phase of an exchange independently.
type Timeouts struct {
	Connect    time.Duration
	Send       time.Duration
	Receive    time.Duration
	Disconnect time.Duration
}

// DefaultTimeouts are used for any timeout left at zero.
var DefaultTimeouts = Timeouts{
	Connect:    5 * time.Second,
	Send:       5 * time.Second,
	Receive:    5 * time.Second,
	Disconnect: 5 * time.Second,
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Connect <= 0 {
		t.Connect = DefaultTimeouts.Connect
	}
	if t.Send <= 0 {
		t.Send = DefaultTimeouts.Send
	}
	if t.Receive <= 0 {
		t.Receive = DefaultTimeouts.Receive
	}
	if t.Disconnect <= 0 {
		t.Disconnect = DefaultTimeouts.Disconnect
	}

	return t
}

// Dialer opens the connection for the connect phase. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Options struct {
	Timeouts Timeouts

	// Dialer defaults to a zero net.Dialer
	Dialer Dialer

	// Trace will log raw packets as base64. This is only useful in local debugging
	Trace bool

	Log *zap.Logger
}
