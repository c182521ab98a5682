package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/sjson"
)

const floatLength = 4

// Response is a decoded topic reply. At most one of StringData and FloatData
// reports a value.
type Response struct {
	Type ResponseType

	raw []byte

	// string or float32, nil when the payload could not be decoded
	value interface{}
}

// DecodeResponse maps the received bytes onto a Response using a header
// parsed from the same bytes. data may be shorter than the declared packet
// length when the peer closed early, in which case the typed value is left
// unset.
func DecodeResponse(data []byte, header ResponseHeader) (*Response, error) {
	resp := &Response{
		Type: header.Type,
		raw:  data,
	}

	packetLength, hasLength := header.PacketLength()

	switch header.Type {
	case StringResponse:
		if !hasLength {
			return nil, fmt.Errorf("%w: string response without a packet length", ErrInvalidState)
		}

		end := int(packetLength)
		if len(data) < end {
			// truncated
			break
		}

		resp.value = string(bytes.TrimRight(data[HeaderLength:end], "\x00"))

	case FloatResponse:
		end := HeaderLength + floatLength
		if len(data) < end || (hasLength && int(packetLength) < end) {
			break
		}

		bits := binary.LittleEndian.Uint32(data[HeaderLength:end])
		resp.value = math.Float32frombits(bits)

	case UnknownResponse:

	default:
		return nil, fmt.Errorf("%w: response type %d", ErrInvalidState, header.Type)
	}

	return resp, nil
}

// Raw returns the bytes exactly as received. The slice must not be modified.
func (r *Response) Raw() []byte {
	return r.raw
}

func (r *Response) StringData() (string, bool) {
	s, ok := r.value.(string)
	return s, ok
}

func (r *Response) FloatData() (float32, bool) {
	f, ok := r.value.(float32)
	return f, ok
}

// MarshalJSON renders the response as
//
//   {"type":"string","raw":"<base64>","string":"..."}
//
// with "float" in place of "string" for float replies. Non-finite floats are
// rendered as strings.
func (r *Response) MarshalJSON() (body []byte, err error) {
	body = []byte(`{}`)

	if body, err = sjson.SetBytes(body, "type", r.Type.String()); err != nil {
		return nil, err
	}

	if body, err = sjson.SetBytes(body, "raw", base64.StdEncoding.EncodeToString(r.raw)); err != nil {
		return nil, err
	}

	if s, ok := r.StringData(); ok {
		return sjson.SetBytes(body, "string", s)
	}

	if f, ok := r.FloatData(); ok {
		wide := float64(f)
		if math.IsNaN(wide) || math.IsInf(wide, 0) {
			return sjson.SetBytes(body, "float", strconv.FormatFloat(wide, 'g', -1, 32))
		}

		return sjson.SetRawBytes(body, "float", []byte(strconv.FormatFloat(wide, 'f', -1, 32)))
	}

	return body, nil
}
