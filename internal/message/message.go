// Package message implements the 2-byte wire frame exchanged over the
// radio link: one type byte followed by one value byte. The link layer
// provides its own integrity checking, so the frame carries no CRC or
// extra framing.
package message

import (
	"errors"
	"fmt"
)

// Frame type codes on the wire.
const (
	TypeCommand   Type = 1 // value = LED index to activate
	TypeAck       Type = 2 // value = currently active LED index
	TypeDiscovery Type = 3 // value = 0
)

// Size is the exact encoded length of a Frame.
const Size = 2

// Type identifies the purpose of a Frame.
type Type uint8

func (t Type) String() string {
	switch t {
	case TypeCommand:
		return "COMMAND"
	case TypeAck:
		return "ACK"
	case TypeDiscovery:
		return "DISCOVERY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// Decode errors. Receivers drop frames that fail to decode.
var (
	ErrBadLength = errors.New("frame length mismatch")
	ErrBadType   = errors.New("unrecognized frame type")
)

// Frame is the immutable {type, value} unit exchanged with the peer.
type Frame struct {
	Type  Type
	Value uint8
}

// Encode returns the wire-exact 2-byte encoding.
func (f Frame) Encode() []byte {
	return []byte{byte(f.Type), f.Value}
}

// Decode parses a received payload. Payloads that are not exactly Size
// bytes or carry an unknown type byte are rejected.
func Decode(data []byte) (Frame, error) {
	if len(data) != Size {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", ErrBadLength, len(data), Size)
	}
	t := Type(data[0])
	switch t {
	case TypeCommand, TypeAck, TypeDiscovery:
	default:
		return Frame{}, fmt.Errorf("%w: %d", ErrBadType, data[0])
	}
	return Frame{Type: t, Value: data[1]}, nil
}
