//go:build !linux && !darwin

package transport

import "net"

// peek is not supported here, the disconnect phase picks up any reset.
func peek(conn net.Conn) (peerState, error) {
	return peerUnknown, nil
}
