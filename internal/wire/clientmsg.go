package wire

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedClientMessage is returned by DecodeClientMessage for any
// structurally invalid datagram; callers silently drop the datagram rather
// than surfacing this to a human (spec: malformed client traffic is never
// fatal to the server).
var ErrMalformedClientMessage = errors.New("wire: malformed client datagram")

// ClientMessage is the client→server datagram: session_id, desired turn
// direction, the next event number the client expects, and an optional
// player name (empty designates a pure observer).
type ClientMessage struct {
	SessionID           uint64
	TurnDirection       uint8
	NextExpectedEventNo uint32
	PlayerName          string
}

// EncodeClientMessage serializes a ClientMessage to its 13-33 byte wire
// form. It does not itself validate; callers are expected to only encode
// values that already satisfy the DecodeClientMessage constraints.
func EncodeClientMessage(m ClientMessage) []byte {
	buf := make([]byte, 13+len(m.PlayerName))
	binary.BigEndian.PutUint64(buf[0:8], m.SessionID)
	buf[8] = m.TurnDirection
	binary.BigEndian.PutUint32(buf[9:13], m.NextExpectedEventNo)
	copy(buf[13:], m.PlayerName)
	return buf
}

// DecodeClientMessage parses and validates a client→server datagram per
// protocol: total length in [13,33], turn_direction in {0,1,2}, and every
// name byte in [33,126].
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	if len(data) < 13 || len(data) > 33 {
		return ClientMessage{}, ErrMalformedClientMessage
	}

	m := ClientMessage{
		SessionID:           binary.BigEndian.Uint64(data[0:8]),
		TurnDirection:       data[8],
		NextExpectedEventNo: binary.BigEndian.Uint32(data[9:13]),
	}
	if m.TurnDirection > 2 {
		return ClientMessage{}, ErrMalformedClientMessage
	}

	nameBytes := data[13:]
	for _, b := range nameBytes {
		if b < 33 || b > 126 {
			return ClientMessage{}, ErrMalformedClientMessage
		}
	}
	m.PlayerName = string(nameBytes)
	return m, nil
}
