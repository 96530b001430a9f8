// Package server runs the single-threaded authoritative game loop: it polls
// the UDP socket non-blockingly, dispatches datagrams into the engine, fires
// ticks when due, evicts timed-out participants, and drains any pending
// broadcast into per-endpoint datagrams.
package server

import (
	"context"
	"net"
	"time"

	"github.com/MikeWelton/screen-worms/internal/engine"
	"github.com/MikeWelton/screen-worms/internal/participant"
	"github.com/MikeWelton/screen-worms/internal/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// maxDatagram is sized comfortably above wire.MTU: client datagrams are at
// most 33 bytes, and the UDP read buffer only needs to hold one inbound
// datagram at a time.
const maxDatagram = 2048

// idlePoll is the sleep applied when a loop iteration did neither read nor
// tick, to avoid spinning a CPU core on pure polling.
const idlePoll = time.Millisecond

// Server is the authoritative game server.
type Server struct {
	conn   *net.UDPConn
	engine *engine.Engine
	params engine.Params
	logger zerolog.Logger
}

// New binds the UDP listener (IPv6 wildcard, dual-stack) and constructs the
// engine.
func New(port int, params engine.Params, logger zerolog.Logger) (*Server, error) {
	addr := &net.UDPAddr{IP: net.IPv6zero, Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "server: listen udp")
	}
	_ = conn.SetReadBuffer(1 << 20)
	_ = conn.SetWriteBuffer(1 << 20)

	return &Server{
		conn:   conn,
		engine: engine.New(params, logger),
		params: params,
		logger: logger,
	}, nil
}

// Close releases the UDP socket.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Run executes the server loop until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Int("width", s.params.Width).Int("height", s.params.Height).
		Int("rounds_per_sec", s.params.RoundsPerSec).Int("turning_speed", s.params.TurningSpeed).
		Msg("server loop starting")

	buf := make([]byte, maxDatagram)
	tickPeriod := s.params.TickPeriod()
	nextTick := time.Now().Add(tickPeriod)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		progressed := false

		if err := s.conn.SetReadDeadline(time.Now()); err != nil {
			return errors.Wrap(err, "server: set read deadline")
		}
		n, addr, err := s.conn.ReadFromUDP(buf)
		switch {
		case err == nil:
			progressed = true
			s.handleDatagram(addr, buf[:n])
		case isTimeout(err):
			// Nothing ready; fall through to tick/sweep handling.
		default:
			s.logger.Warn().Err(err).Msg("udp read error")
		}

		now := time.Now()
		for !now.Before(nextTick) {
			progressed = true
			if s.engine.Tick(now) {
				s.broadcast(s.engine.DrainPending())
			}
			nextTick = nextTick.Add(tickPeriod)
			now = time.Now()
		}

		s.engine.Sweep(now)

		if !progressed {
			time.Sleep(idlePoll)
		}
	}
}

func (s *Server) handleDatagram(addr *net.UDPAddr, data []byte) {
	ep := participant.EndpointFromUDPAddr(addr)
	unicast := s.engine.HandleClientDatagram(ep, data, time.Now())
	if len(unicast) > 0 {
		s.sendTo(addr, unicast)
	}
}

func (s *Server) sendTo(addr *net.UDPAddr, events []wire.Event) {
	datagrams, err := wire.Segment(s.engine.RoundID(), events)
	if err != nil {
		s.logger.Warn().Err(err).Msg("segment unicast reply")
		return
	}
	for _, dg := range datagrams {
		if _, err := s.conn.WriteToUDP(dg, addr); err != nil {
			s.logger.Warn().Err(err).Str("addr", addr.String()).Msg("unicast write failed")
		}
	}
}

func (s *Server) broadcast(events []wire.Event) {
	if len(events) == 0 {
		return
	}
	datagrams, err := wire.Segment(s.engine.RoundID(), events)
	if err != nil {
		s.logger.Warn().Err(err).Msg("segment broadcast")
		return
	}
	for _, ep := range s.engine.BroadcastTargets() {
		addr := &net.UDPAddr{IP: append(net.IP(nil), ep.IP[:]...), Port: ep.Port}
		for _, dg := range datagrams {
			if _, err := s.conn.WriteToUDP(dg, addr); err != nil {
				s.logger.Warn().Err(err).Str("addr", addr.String()).Msg("broadcast write failed")
			}
		}
	}
}

func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
