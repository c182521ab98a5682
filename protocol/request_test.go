package protocol_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/topicsender/protocol"
)

var _ = Describe("EncodeRequest()", func() {
	It("frames a query", func() {
		packet, err := protocol.EncodeRequest("status")
		Expect(err).To(Succeed())
		Expect(packet).To(Equal([]byte{
			0x00, 0x83, // reserved, signature
			0x00, 0x0c, // length 12
			0x00, 0x00, 0x00, 0x00, // padding
			'?', 's', 't', 'a', 't', 'u', 's',
			0x00, // terminator
		}))
	})

	It("frames an empty query as a lone '?'", func() {
		packet, err := protocol.EncodeRequest("")
		Expect(err).To(Succeed())
		Expect(packet).To(HaveLen(10))
		Expect(packet[8:]).To(Equal([]byte{'?', 0x00}))
	})

	table.DescribeTable("round trips its length field",
		func(query string) {
			packet, err := protocol.EncodeRequest(query)
			Expect(err).To(Succeed())

			length, err := protocol.RequestLength(packet)
			Expect(err).To(Succeed())
			Expect(int(length)).To(Equal(len(packet) - 4))

			prefixed, err := protocol.EncodeRequest("?" + query)
			Expect(err).To(Succeed())
			Expect(prefixed).To(Equal(packet))

			text, err := protocol.RequestQuery(packet)
			Expect(err).To(Succeed())
			Expect(text).To(Equal("?" + query))
		},
		table.Entry("plain", "status"),
		table.Entry("empty", ""),
		table.Entry("params", "ping&key=abc%3d"),
		table.Entry("multi-byte", "announce=héllo wörld ✓"),
		table.Entry("long", strings.Repeat("x", 4096)),
	)

	It("accepts the longest topic that fits the length field", func() {
		// 65535 = 4 padding + '?' + query + terminator
		packet, err := protocol.EncodeRequest(strings.Repeat("a", 65529))
		Expect(err).To(Succeed())
		Expect(packet).To(HaveLen(65539))

		length, err := protocol.RequestLength(packet)
		Expect(err).To(Succeed())
		Expect(length).To(Equal(uint16(65535)))
	})

	It("rejects a topic one byte too long", func() {
		packet, err := protocol.EncodeRequest(strings.Repeat("a", 65530))
		Expect(packet).To(BeNil())
		Expect(errors.Is(err, protocol.ErrTopicTooLong)).To(BeTrue())
		Expect(errors.Is(err, protocol.ErrInvalidArgument)).To(BeTrue())
	})

	It("rejects invalid UTF-8", func() {
		_, err := protocol.EncodeRequest("bad\xff")
		Expect(errors.Is(err, protocol.ErrInvalidArgument)).To(BeTrue())
	})
})

var _ = Describe("RequestLength()", func() {
	It("rejects packets without a signature", func() {
		_, err := protocol.RequestLength([]byte{0x00, 0x00, 0x00, 0x01})
		Expect(errors.Is(err, protocol.ErrInvalidArgument)).To(BeTrue())
	})

	It("rejects short packets", func() {
		_, err := protocol.RequestLength([]byte{0x00, 0x83})
		Expect(errors.Is(err, protocol.ErrInvalidArgument)).To(BeTrue())
	})
})
