package transport

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"golang.org/x/net/nettest"
)

var _ = Describe("peek()", func() {
	var (
		listener net.Listener
		client   net.Conn
		server   *net.TCPConn
	)

	BeforeEach(func() {
		var err error
		listener, err = nettest.NewLocalListener("tcp4")
		Expect(err).To(Succeed())

		accepted := make(chan net.Conn, 1)
		go func() {
			conn, err := listener.Accept()
			if err == nil {
				accepted <- conn
			}
		}()

		client, err = net.Dial("tcp4", listener.Addr().String())
		Expect(err).To(Succeed())

		var conn net.Conn
		Eventually(accepted).Should(Receive(&conn))
		server = conn.(*net.TCPConn)
	})

	AfterEach(func() {
		client.Close()
		server.Close()
		listener.Close()
	})

	It("reports an open peer without blocking", func() {
		Expect(peek(client)).To(Equal(peerOpen))
	})

	It("leaves pending bytes in the queue", func() {
		_, err := server.Write([]byte("abc"))
		Expect(err).To(Succeed())

		Eventually(func() (peerState, error) { return peek(client) }).Should(Equal(peerOpen))

		Expect(client.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		buf := make([]byte, 3)
		n, err := client.Read(buf)
		Expect(err).To(Succeed())
		Expect(string(buf[:n])).To(HavePrefix("a"))
	})

	It("reports a closed peer", func() {
		Expect(server.Close()).To(Succeed())

		Eventually(func() (peerState, error) { return peek(client) }).Should(Equal(peerClosed))
	})

	It("reports a reset", func() {
		Expect(server.SetLinger(0)).To(Succeed())
		Expect(server.Close()).To(Succeed())

		Eventually(func() (peerState, error) { return peek(client) }).Should(Equal(peerReset))
	})

	It("reports unknown for connections without a socket", func() {
		a, b := net.Pipe()
		defer a.Close()
		defer b.Close()

		Expect(peek(a)).To(Equal(peerUnknown))
	})
})
