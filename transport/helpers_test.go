package transport_test

import (
	"context"
	"encoding/binary"
	"io"
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"golang.org/x/net/nettest"

	"github.com/luma/topicsender/protocol"
)

// worldServer accepts a single connection and hands it to handle.
type worldServer struct {
	listener net.Listener
	queries  chan string
}

func startWorldServer(handle func(s *worldServer, conn *net.TCPConn)) *worldServer {
	l, err := nettest.NewLocalListener("tcp4")
	Expect(err).To(Succeed())

	s := &worldServer{listener: l, queries: make(chan string, 1)}

	go func() {
		defer GinkgoRecover()

		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		handle(s, conn.(*net.TCPConn))
	}()

	return s
}

func (s *worldServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *worldServer) Close() {
	s.listener.Close()
}

// readRequest reads one framed request and records its query.
func (s *worldServer) readRequest(conn net.Conn) string {
	prefix := make([]byte, 4)
	_, err := io.ReadFull(conn, prefix)
	Expect(err).To(Succeed())

	length := binary.BigEndian.Uint16(prefix[2:4])
	rest := make([]byte, length)
	_, err = io.ReadFull(conn, rest)
	Expect(err).To(Succeed())

	query, err := protocol.RequestQuery(append(prefix, rest...))
	Expect(err).To(Succeed())

	s.queries <- query
	return query
}

func makeResponse(tag byte, payload []byte) []byte {
	data := []byte{0x00, 0x83, 0x00, 0x00, tag}
	binary.BigEndian.PutUint16(data[2:4], uint16(len(payload)))
	return append(data, payload...)
}

func stringResponse(s string) []byte {
	return makeResponse(0x06, append([]byte(s), 0x00))
}

type dialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f dialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}
