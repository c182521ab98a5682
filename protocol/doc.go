package protocol

// This package implements the framing for the Topic protocol, the binary
// request/response format used to query or command a running world server.
//
// A client sends exactly one request per connection and reads exactly one
// response back. There is no pipelining and no request ID.
//
// === Request
//
//   ```
//   offset 0     0x00              reserved
//   offset 1     0x83              signature
//   offset 2-3   uint16 BE         length of everything after offset 3
//   offset 4-7   0x00 0x00 0x00 0x00
//   offset 8..   ?<query>          UTF-8, '?' prepended when missing
//   offset N     0x00              terminator
//   ```
//
// The length field can not exceed 65535, longer topics are rejected.
//
// === Response
//
//   ```
//   offset 0     0x00              reserved
//   offset 1     0x83              signature, the header is invalid without it
//   offset 2-3   uint16 BE         payload length, packet length = field + 5
//   offset 4     type tag          0x06 string, 0x2a float, anything else unknown
//   offset 5..   payload
//   ```
//
// String payloads run up to the packet length and are NUL trimmed. Float
// payloads are 4 bytes of little-endian IEEE-754 single precision, whatever
// the byte order of the header.
//
// The exact response length is unknown until the first HeaderLength bytes
// have arrived, so readers must call ParseHeader on partial input until it
// reports a valid header, and then grow their buffer to the packet length.
