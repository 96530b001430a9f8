// Package bridge implements the client-side protocol bridge: the
// single-threaded loop that multiplexes the server UDP socket and the local
// GUI TCP socket, translates GUI key lines into turn_direction, sends a
// fixed 30ms keep-alive to the server, and filters/translates server events
// into the GUI text protocol while maintaining a monotone "next expected
// event" cursor.
package bridge

import (
	"bytes"
	"context"
	"net"
	"time"

	"github.com/MikeWelton/screen-worms/internal/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// KeepAlivePeriod is the fixed interval on which the client sends its
// turn_direction/cursor/name datagram to the server, independent of server
// traffic.
const KeepAlivePeriod = 30 * time.Millisecond

// maxServerDatagram is sized comfortably above wire.MTU.
const maxServerDatagram = 2048

// idlePoll is the sleep applied when a loop iteration did nothing, to avoid
// spinning a CPU core on pure polling.
const idlePoll = time.Millisecond

// ErrProtocolViolation is returned (and is fatal to the caller) when the
// server sends an event referencing bounds or a player number outside what
// the captured NEW_GAME established, which is treated as a malformed
// server, not a recoverable condition.
var ErrProtocolViolation = errors.New("bridge: server protocol violation")

// lineReader buffers partial reads off a non-blocking TCP connection and
// yields one newline-terminated line at a time. bufio.Scanner cannot be
// reused here: once its Read returns a deadline-exceeded error, Scan is
// permanently done, which breaks a polling loop that intends to keep
// reading after a harmless timeout.
type lineReader struct {
	conn  net.Conn
	buf   []byte
	inbuf [4096]byte
}

// poll attempts one non-blocking read and returns the next buffered line, if
// any. ok is false (with err nil) when nothing is ready yet; err is non-nil
// only for a genuine I/O failure (not a read timeout).
func (lr *lineReader) poll() (line string, ok bool, err error) {
	if idx := bytes.IndexByte(lr.buf, '\n'); idx >= 0 {
		line = string(bytes.TrimRight(lr.buf[:idx], "\r"))
		lr.buf = lr.buf[idx+1:]
		return line, true, nil
	}

	if err := lr.conn.SetReadDeadline(time.Now()); err != nil {
		return "", false, err
	}
	n, rerr := lr.conn.Read(lr.inbuf[:])
	if n > 0 {
		lr.buf = append(lr.buf, lr.inbuf[:n]...)
	}
	if rerr != nil {
		if netErr, ok := rerr.(net.Error); ok && netErr.Timeout() {
			return "", false, nil
		}
		return "", false, rerr
	}

	if idx := bytes.IndexByte(lr.buf, '\n'); idx >= 0 {
		line = string(bytes.TrimRight(lr.buf[:idx], "\r"))
		lr.buf = lr.buf[idx+1:]
		return line, true, nil
	}
	return "", false, nil
}

// keyToDirection maps a GUI key line (already stripped of its trailing
// newline) to a turn_direction. Unknown lines return (0, false) and leave
// the caller's turn_direction unchanged.
func keyToDirection(line string) (dir uint8, known bool) {
	switch line {
	case "LEFT_KEY_DOWN":
		return 2, true
	case "RIGHT_KEY_DOWN":
		return 1, true
	case "LEFT_KEY_UP", "RIGHT_KEY_UP":
		return 0, true
	default:
		return 0, false
	}
}

// Bridge is the client-side protocol bridge.
type Bridge struct {
	udp *net.UDPConn
	gui *net.TCPConn
	rdr *lineReader

	sessionID  uint64
	playerName string

	turnDirection uint8
	cursor        uint32

	haveRound bool
	roundID   uint32
	maxX      uint32
	maxY      uint32
	names     []string

	logger zerolog.Logger
}

// New constructs a Bridge. sessionID should be microseconds since the Unix
// epoch, taken once at startup; udp must already be connected (Dial'd) to the game server; gui
// must already have TCP_NODELAY set.
func New(udp *net.UDPConn, gui *net.TCPConn, sessionID uint64, playerName string, logger zerolog.Logger) *Bridge {
	return &Bridge{
		udp:        udp,
		gui:        gui,
		rdr:        &lineReader{conn: gui},
		sessionID:  sessionID,
		playerName: playerName,
		logger:     logger,
	}
}

// Run executes the client loop until ctx is canceled or a fatal error
// occurs (broken GUI/server I/O, or a server protocol violation).
func (b *Bridge) Run(ctx context.Context) error {
	buf := make([]byte, maxServerDatagram)
	nextKeepAlive := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		progressed := false

		line, ok, err := b.rdr.poll()
		if err != nil {
			return errors.Wrap(err, "bridge: gui socket read")
		}
		if ok {
			progressed = true
			if dir, known := keyToDirection(line); known {
				b.turnDirection = dir
			}
		}

		if err := b.udp.SetReadDeadline(time.Now()); err != nil {
			return errors.Wrap(err, "bridge: set udp read deadline")
		}
		n, rerr := b.udp.Read(buf)
		switch {
		case rerr == nil:
			progressed = true
			if err := b.handleServerDatagram(buf[:n]); err != nil {
				return err
			}
		case isTimeout(rerr):
			// nothing ready
		default:
			return errors.Wrap(rerr, "bridge: server socket read")
		}

		now := time.Now()
		if !now.Before(nextKeepAlive) {
			progressed = true
			if err := b.sendKeepAlive(); err != nil {
				return err
			}
			nextKeepAlive = nextKeepAlive.Add(KeepAlivePeriod)
		}

		if !progressed {
			time.Sleep(idlePoll)
		}
	}
}

func (b *Bridge) sendKeepAlive() error {
	msg := wire.ClientMessage{
		SessionID:           b.sessionID,
		TurnDirection:       b.turnDirection,
		NextExpectedEventNo: b.cursor,
		PlayerName:          b.playerName,
	}
	_, err := b.udp.Write(wire.EncodeClientMessage(msg))
	if err != nil {
		return errors.Wrap(err, "bridge: keep-alive write")
	}
	return nil
}

// handleServerDatagram parses, validates, updates the cursor, and emits GUI
// lines for one server->client datagram. It returns a fatal error if the
// server references data outside the bounds/names captured by the most
// recent NEW_GAME.
func (b *Bridge) handleServerDatagram(data []byte) error {
	gameID, events, err := wire.ParseServerDatagram(data)
	if err != nil {
		// A known event type with a malformed body: events already decoded
		// before it are still applied below; only the remainder is dropped.
		b.logger.Warn().Err(err).Msg("malformed server event, dropping remainder of datagram")
	}

	var lines []string
	for _, ev := range events {
		line, perr := b.applyEvent(gameID, ev)
		if perr != nil {
			return perr
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	for _, line := range lines {
		if _, err := b.gui.Write([]byte(line + "\n")); err != nil {
			return errors.Wrap(err, "bridge: gui socket write")
		}
	}
	return nil
}

// applyEvent updates bridge state for one event and returns the GUI line to
// emit for it. NEW_GAME yields its "NEW_GAME maxx maxy names..." line;
// GAME_OVER, unknown types and events from a different round yield "".
func (b *Bridge) applyEvent(gameID uint32, ev wire.Event) (string, error) {
	if ev.Type == wire.EventNewGame {
		b.maxX = ev.NewGame.MaxX
		b.maxY = ev.NewGame.MaxY
		b.names = ev.NewGame.PlayerNames
		b.roundID = gameID
		b.haveRound = true
		b.cursor = ev.EventNo + 1
		return newGameLine(ev.NewGame), nil
	}

	if !b.haveRound || gameID != b.roundID {
		b.cursor = 0
		return "", nil
	}

	if ev.EventNo+1 > b.cursor {
		b.cursor = ev.EventNo + 1
	}

	switch ev.Type {
	case wire.EventPixel:
		if ev.Pixel.X >= b.maxX || ev.Pixel.Y >= b.maxY {
			return "", errors.Wrap(ErrProtocolViolation, "pixel out of bounds")
		}
		if int(ev.Pixel.PlayerNumber) >= len(b.names) {
			return "", errors.Wrap(ErrProtocolViolation, "pixel references unknown player")
		}
		return pixelLine(ev.Pixel, b.names), nil

	case wire.EventPlayerEliminated:
		if int(ev.PlayerEliminated.PlayerNumber) >= len(b.names) {
			return "", errors.Wrap(ErrProtocolViolation, "elimination references unknown player")
		}
		return eliminatedLine(ev.PlayerEliminated, b.names), nil

	case wire.EventGameOver:
		b.cursor = 0
		return "", nil

	default:
		return "", nil
	}
}

func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
