// Package wire implements the screen-worms binary protocol: server event
// records (length-prefixed, CRC-32 verified) and client input datagrams, plus
// MTU-aware segmentation of an outgoing event stream.
//
// All multi-byte integers on the wire are big-endian.
package wire

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

// EventType tags the body carried by an Event.
type EventType uint8

const (
	EventNewGame          EventType = 1
	EventPixel            EventType = 2
	EventPlayerEliminated EventType = 3
	EventGameOver         EventType = 4
)

// MTU is the outgoing-datagram ceiling enforced by Segment.
const MTU = 550

// Sentinel errors surfaced for malformed-but-known-type records. CRC failures
// and unknown event types are not errors: they are silently handled by the
// parser per protocol (stop-parsing and skip-record, respectively).
var (
	ErrShortRecord   = errors.New("wire: record body too short for its event type")
	ErrNameTooLong   = errors.New("wire: player name exceeds 20 bytes")
	ErrNameBadByte   = errors.New("wire: player name byte outside [33,126]")
	ErrTooManyNames  = errors.New("wire: NEW_GAME body truncated inside player name list")
	ErrShortDatagram = errors.New("wire: datagram too short to contain game_id")
)

// NewGameBody is the payload of an EventNewGame record.
type NewGameBody struct {
	MaxX, MaxY  uint32
	PlayerNames []string
}

// PixelBody is the payload of an EventPixel record.
type PixelBody struct {
	PlayerNumber uint8
	X, Y         uint32
}

// PlayerEliminatedBody is the payload of an EventPlayerEliminated record.
type PlayerEliminatedBody struct {
	PlayerNumber uint8
}

// GameOverBody is the (empty) payload of an EventGameOver record.
type GameOverBody struct{}

// Event is one round event: a monotone event number, a type tag, and the body
// for that type. Exactly one of the body fields below is meaningful,
// selected by Type. This is the Go stand-in for a tagged sum, dispatched on
// Type rather than modeled as an interface hierarchy.
type Event struct {
	EventNo          uint32
	Type             EventType
	NewGame          NewGameBody
	Pixel            PixelBody
	PlayerEliminated PlayerEliminatedBody
	GameOver         GameOverBody
}

func bodyBytes(e Event) ([]byte, error) {
	switch e.Type {
	case EventNewGame:
		for _, name := range e.NewGame.PlayerNames {
			if len(name) > 20 {
				return nil, ErrNameTooLong
			}
			for i := 0; i < len(name); i++ {
				if name[i] < 33 || name[i] > 126 {
					return nil, ErrNameBadByte
				}
			}
		}
		buf := make([]byte, 0, 8+len(e.NewGame.PlayerNames)*8)
		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[0:4], e.NewGame.MaxX)
		binary.BigEndian.PutUint32(hdr[4:8], e.NewGame.MaxY)
		buf = append(buf, hdr[:]...)
		for _, name := range e.NewGame.PlayerNames {
			buf = append(buf, name...)
			buf = append(buf, 0)
		}
		return buf, nil
	case EventPixel:
		var b [9]byte
		b[0] = e.Pixel.PlayerNumber
		binary.BigEndian.PutUint32(b[1:5], e.Pixel.X)
		binary.BigEndian.PutUint32(b[5:9], e.Pixel.Y)
		return b[:], nil
	case EventPlayerEliminated:
		return []byte{e.PlayerEliminated.PlayerNumber}, nil
	case EventGameOver:
		return nil, nil
	default:
		return nil, errors.Errorf("wire: unknown event type %d", e.Type)
	}
}

// Marshal serializes a single event record: len | event_no | event_type |
// body | crc32, with the CRC computed over {len, event_no, event_type, body}.
func Marshal(e Event) ([]byte, error) {
	body, err := bodyBytes(e)
	if err != nil {
		return nil, errors.WithMessage(err, "wire: marshal event")
	}

	payload := make([]byte, 5+len(body))
	binary.BigEndian.PutUint32(payload[0:4], e.EventNo)
	payload[4] = byte(e.Type)
	copy(payload[5:], body)

	record := make([]byte, 4+len(payload)+4)
	binary.BigEndian.PutUint32(record[0:4], uint32(len(payload)))
	copy(record[4:4+len(payload)], payload)

	crc := crc32.ChecksumIEEE(record[:4+len(payload)])
	binary.BigEndian.PutUint32(record[4+len(payload):], crc)
	return record, nil
}

// decodeBody parses a known event type's body. It returns ErrShortRecord (or
// a name-validity error) if body is malformed for that type; these surface
// to the caller per protocol, unlike CRC/unknown-type handling.
func decodeBody(typ EventType, eventNo uint32, body []byte) (Event, error) {
	e := Event{EventNo: eventNo, Type: typ}
	switch typ {
	case EventNewGame:
		if len(body) < 8 {
			return e, ErrShortRecord
		}
		e.NewGame.MaxX = binary.BigEndian.Uint32(body[0:4])
		e.NewGame.MaxY = binary.BigEndian.Uint32(body[4:8])
		rest := body[8:]
		var names []string
		for len(rest) > 0 {
			nul := -1
			for i, b := range rest {
				if b == 0 {
					nul = i
					break
				}
			}
			if nul < 0 {
				return e, ErrTooManyNames
			}
			name := string(rest[:nul])
			if len(name) > 20 {
				return e, ErrNameTooLong
			}
			for i := 0; i < len(name); i++ {
				if name[i] < 33 || name[i] > 126 {
					return e, ErrNameBadByte
				}
			}
			names = append(names, name)
			rest = rest[nul+1:]
		}
		e.NewGame.PlayerNames = names
		return e, nil
	case EventPixel:
		if len(body) != 9 {
			return e, ErrShortRecord
		}
		e.Pixel.PlayerNumber = body[0]
		e.Pixel.X = binary.BigEndian.Uint32(body[1:5])
		e.Pixel.Y = binary.BigEndian.Uint32(body[5:9])
		return e, nil
	case EventPlayerEliminated:
		if len(body) != 1 {
			return e, ErrShortRecord
		}
		e.PlayerEliminated.PlayerNumber = body[0]
		return e, nil
	case EventGameOver:
		if len(body) != 0 {
			return e, ErrShortRecord
		}
		return e, nil
	default:
		return e, errors.Errorf("wire: decodeBody called with unknown type %d", typ)
	}
}

// ParseServerDatagram parses game_id followed by a sequence of event
// records. On a CRC mismatch it stops and returns the events decoded so far
// with no error (the remainder of the datagram is silently dropped). On an
// unknown event type it skips that record and continues. A known type with a
// malformed body returns an error immediately.
func ParseServerDatagram(data []byte) (gameID uint32, events []Event, err error) {
	if len(data) < 4 {
		return 0, nil, ErrShortDatagram
	}
	gameID = binary.BigEndian.Uint32(data[0:4])
	rest := data[4:]

	for len(rest) >= 4 {
		recLen := binary.BigEndian.Uint32(rest[0:4])
		total := 4 + uint64(recLen) + 4
		if uint64(len(rest)) < total {
			// Truncated record: treat like a CRC failure and stop silently.
			break
		}

		crcRegion := rest[:4+recLen]
		storedCRC := binary.BigEndian.Uint32(rest[4+recLen : 4+recLen+4])
		if crc32.ChecksumIEEE(crcRegion) != storedCRC {
			break
		}

		payload := rest[4 : 4+recLen]
		if len(payload) < 5 {
			break
		}
		eventNo := binary.BigEndian.Uint32(payload[0:4])
		typ := EventType(payload[4])
		body := payload[5:]

		switch typ {
		case EventNewGame, EventPixel, EventPlayerEliminated, EventGameOver:
			ev, derr := decodeBody(typ, eventNo, body)
			if derr != nil {
				return gameID, events, errors.WithMessage(derr, "wire: decode event body")
			}
			events = append(events, ev)
		default:
			// Unknown type: skip record, keep parsing.
		}

		rest = rest[total:]
	}

	return gameID, events, nil
}
