package transport

import (
	"errors"
	"fmt"
)

// Phase is a state of the exchange state machine. Phases only move forward
// and the first unrecovered failure ends the exchange.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseSending
	PhaseReceiving
	PhaseDisconnecting
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connect"
	case PhaseSending:
		return "send"
	case PhaseReceiving:
		return "receive"
	case PhaseDisconnecting:
		return "disconnect"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	ErrTimeout   = errors.New("timed out")
	ErrCancelled = errors.New("cancelled")
	ErrTransport = errors.New("transport error")
)

// PhaseError reports which phase failed and how. Kind is one of ErrTimeout,
// ErrCancelled, ErrTransport or protocol.ErrProtocol, and matches with
// errors.Is. Err is the underlying cause.
type PhaseError struct {
	Phase Phase
	Kind  error
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Kind, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func (e *PhaseError) Is(target error) bool {
	return target == e.Kind
}
