package protocol_test

import (
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/topicsender/protocol"
)

var _ = Describe("ParseHeader()", func() {
	It("is invalid with fewer than HeaderLength bytes", func() {
		for n := 0; n < protocol.HeaderLength; n++ {
			h := protocol.ParseHeader([]byte{0x00, 0x83, 0x00, 0x06, 0x06}[:n])
			Expect(h.Valid()).To(BeFalse())

			_, ok := h.PacketLength()
			Expect(ok).To(BeFalse())
			Expect(h.Type).To(Equal(protocol.UnknownResponse))
		}
	})

	It("is invalid without the signature", func() {
		h := protocol.ParseHeader([]byte{0x00, 0x84, 0x00, 0x06, 0x06})
		Expect(h.Valid()).To(BeFalse())

		_, ok := h.PacketLength()
		Expect(ok).To(BeFalse())
	})

	table.DescribeTable("recovers the packet length and type",
		func(field uint16, tag byte, want protocol.ResponseType) {
			h := protocol.ParseHeader([]byte{0x00, 0x83, byte(field >> 8), byte(field), tag})
			Expect(h.Valid()).To(BeTrue())
			Expect(h.Type).To(Equal(want))

			length, ok := h.PacketLength()
			Expect(ok).To(BeTrue())
			Expect(int(length)).To(Equal(int(field) + protocol.HeaderLength))
		},
		table.Entry("string", uint16(6), byte(0x06), protocol.StringResponse),
		table.Entry("float", uint16(5), byte(0x2a), protocol.FloatResponse),
		table.Entry("empty string", uint16(0), byte(0x06), protocol.StringResponse),
		table.Entry("large string", uint16(0x1234), byte(0x06), protocol.StringResponse),
		table.Entry("largest representable", uint16(65530), byte(0x2a), protocol.FloatResponse),
		table.Entry("null tag", uint16(1), byte(0x00), protocol.UnknownResponse),
		table.Entry("other tag", uint16(1), byte(0x07), protocol.UnknownResponse),
	)

	It("only reads the first HeaderLength bytes", func() {
		h := protocol.ParseHeader([]byte{0x00, 0x83, 0x00, 0x02, 0x06, 'o', 'k'})
		length, ok := h.PacketLength()
		Expect(ok).To(BeTrue())
		Expect(length).To(Equal(uint16(7)))
	})

	It("has no packet length when it would overflow 16 bits", func() {
		h := protocol.ParseHeader([]byte{0x00, 0x83, 0xff, 0xfb, 0x06})
		Expect(h.Valid()).To(BeTrue())
		Expect(h.Type).To(Equal(protocol.StringResponse))

		_, ok := h.PacketLength()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ResponseType", func() {
	It("has readable names", func() {
		Expect(protocol.StringResponse.String()).To(Equal("string"))
		Expect(protocol.FloatResponse.String()).To(Equal("float"))
		Expect(protocol.UnknownResponse.String()).To(Equal("unknown"))
	})
})
