package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// Signature is the second byte of every request and response.
	Signature byte = 0x83

	// QueryPrefix starts every query string on the wire.
	QueryPrefix = "?"

	// requestPrefixLength covers the reserved byte, the signature and the
	// length field, none of which count towards the length field.
	requestPrefixLength = 4

	// requestPadding is the run of zero bytes between the length field and
	// the query text.
	requestPadding = 4
)

// EncodeRequest builds the wire form of a topic request for query. A leading
// '?' is added to the query when it is missing.
func EncodeRequest(query string) ([]byte, error) {
	if !utf8.ValidString(query) {
		return nil, fmt.Errorf("%w: query is not valid UTF-8", ErrInvalidArgument)
	}

	if !strings.HasPrefix(query, QueryPrefix) {
		query = QueryPrefix + query
	}

	// query text plus the NUL terminator
	size := requestPrefixLength + requestPadding + len(query) + 1

	length := size - requestPrefixLength
	if length > math.MaxUint16 {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrTopicTooLong, length, math.MaxUint16)
	}

	packet := make([]byte, size)
	packet[1] = Signature
	binary.BigEndian.PutUint16(packet[2:requestPrefixLength], uint16(length))
	copy(packet[requestPrefixLength+requestPadding:], query)

	return packet, nil
}

// RequestLength returns the length field of an encoded request.
func RequestLength(packet []byte) (uint16, error) {
	if len(packet) < requestPrefixLength || packet[1] != Signature {
		return 0, fmt.Errorf("%w: malformed request", ErrInvalidArgument)
	}

	return binary.BigEndian.Uint16(packet[2:requestPrefixLength]), nil
}

// RequestQuery returns the query text carried by an encoded request, without
// the NUL terminator.
func RequestQuery(packet []byte) (string, error) {
	start := requestPrefixLength + requestPadding
	if len(packet) <= start || packet[1] != Signature {
		return "", fmt.Errorf("%w: malformed request", ErrInvalidArgument)
	}

	return strings.TrimRight(string(packet[start:]), "\x00"), nil
}
