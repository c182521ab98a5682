//go:build linux || darwin

package transport

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// peek looks at the receive queue without consuming from it and without
// blocking.
func peek(conn net.Conn) (peerState, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return peerUnknown, nil
	}

	rawConn, err := sc.SyscallConn()
	if err != nil {
		return peerUnknown, err
	}

	var (
		n       int
		peekErr error
		one     = make([]byte, 1)
	)

	err = rawConn.Read(func(fd uintptr) bool {
		for {
			n, _, peekErr = unix.Recvfrom(int(fd), one, unix.MSG_PEEK|unix.MSG_DONTWAIT)
			if peekErr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return peerUnknown, err
	}

	switch {
	case errors.Is(peekErr, unix.EAGAIN), errors.Is(peekErr, unix.EWOULDBLOCK):
		return peerOpen, nil

	case errors.Is(peekErr, unix.ECONNRESET):
		return peerReset, nil

	case peekErr != nil:
		return peerUnknown, peekErr

	case n == 0:
		return peerClosed, nil

	default:
		// Trailing bytes past the declared packet length
		return peerOpen, nil
	}
}
