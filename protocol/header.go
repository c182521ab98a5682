package protocol

import (
	"encoding/binary"
	"math"
)

// HeaderLength is the number of bytes needed before a response header can
// be parsed.
const HeaderLength = 5

type ResponseType int

const (
	UnknownResponse ResponseType = iota
	StringResponse
	FloatResponse
)

const (
	tagString byte = 0x06
	tagFloat  byte = 0x2a
)

func (t ResponseType) String() string {
	switch t {
	case StringResponse:
		return "string"
	case FloatResponse:
		return "float"
	default:
		return "unknown"
	}
}

func responseTypeOf(tag byte) ResponseType {
	switch tag {
	case tagString:
		return StringResponse
	case tagFloat:
		return FloatResponse
	default:
		return UnknownResponse
	}
}

// ResponseHeader is derived from the first HeaderLength bytes of a response.
type ResponseHeader struct {
	Type ResponseType

	valid        bool
	packetLength uint16
	hasLength    bool
}

// ParseHeader parses the response header at the start of data. Short input
// yields an invalid header rather than an error, callers should parse again
// once more bytes have arrived.
func ParseHeader(data []byte) ResponseHeader {
	var h ResponseHeader

	if len(data) < HeaderLength || data[1] != Signature {
		return h
	}

	h.valid = true
	h.Type = responseTypeOf(data[4])

	packetLength := int(binary.BigEndian.Uint16(data[2:4])) + HeaderLength
	if packetLength <= math.MaxUint16 {
		h.packetLength = uint16(packetLength)
		h.hasLength = true
	}

	return h
}

// Valid reports whether enough bytes were present and the signature matched.
func (h ResponseHeader) Valid() bool {
	return h.valid
}

// PacketLength returns the total expected length of the response, header
// included. The second value is false when the header is invalid or the
// declared length overflows 16 bits.
func (h ResponseHeader) PacketLength() (uint16, bool) {
	return h.packetLength, h.hasLength
}
