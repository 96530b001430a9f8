// Package engine implements the authoritative game simulation: tick
// scheduling, worm kinematics, collision detection, round lifecycle, the
// seeded RNG, and event emission. It exclusively owns the Round state and
// the Participant Table, and only the single-threaded server loop may call
// into it.
package engine

import (
	"sort"
	"time"

	"github.com/MikeWelton/screen-worms/internal/eventlog"
	"github.com/MikeWelton/screen-worms/internal/geom"
	"github.com/MikeWelton/screen-worms/internal/participant"
	"github.com/MikeWelton/screen-worms/internal/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Params are the configurable, range-enforced round parameters.
type Params struct {
	TurningSpeed int // degrees/tick, [1,90]
	Width        int // [16,1920]
	Height       int // [16,1080]
	Seed         uint32
	RoundsPerSec int // [1,250]
}

// Validate enforces the engine's configured parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.TurningSpeed < 1 || p.TurningSpeed > 90:
		return errors.Errorf("turning_speed %d out of range [1,90]", p.TurningSpeed)
	case p.Width < 16 || p.Width > 1920:
		return errors.Errorf("width %d out of range [16,1920]", p.Width)
	case p.Height < 16 || p.Height > 1080:
		return errors.Errorf("height %d out of range [16,1080]", p.Height)
	case p.RoundsPerSec < 1 || p.RoundsPerSec > 250:
		return errors.Errorf("rounds_per_sec %d out of range [1,250]", p.RoundsPerSec)
	}
	return nil
}

// TickPeriod is the configured inter-tick duration.
func (p Params) TickPeriod() time.Duration {
	return time.Duration(1000/p.RoundsPerSec) * time.Millisecond
}

// contact is the engine's game-specific shadow of a participant.Table entry:
// the lobby-level fields the protocol-level Table doesn't carry.
type contact struct {
	Name          string
	TurnDirection uint8
	Ready         bool
}

// Engine owns the Round state and the Participant Table exclusively.
type Engine struct {
	params Params
	rng    *RNG
	table  *participant.Table
	log    *eventlog.Log
	round  *round

	contacts map[participant.Endpoint]*contact

	logger zerolog.Logger
}

// New constructs an Engine. params must already be Validate()'d.
func New(params Params, logger zerolog.Logger) *Engine {
	return &Engine{
		params:   params,
		rng:      NewRNG(params.Seed),
		table:    participant.NewTable(),
		log:      eventlog.New(),
		contacts: make(map[participant.Endpoint]*contact),
		logger:   logger,
	}
}

// TableLen exposes the current participant count (for tests/metrics).
func (e *Engine) TableLen() int {
	return e.table.Len()
}

// RoundID returns the current game_id (0 before any round has ever started).
func (e *Engine) RoundID() uint32 {
	if e.round == nil {
		return 0
	}
	return e.round.id
}

// DrainPending returns events appended since the last drain, advancing the
// broadcast cursor. The server loop calls this exactly when Tick reports
// appended events.
func (e *Engine) DrainPending() []wire.Event {
	return e.log.DrainPending()
}

// BroadcastTargets returns the endpoints currently registered in the
// participant table.
func (e *Engine) BroadcastTargets() []participant.Endpoint {
	entries := e.table.Entries()
	out := make([]participant.Endpoint, len(entries))
	for i, en := range entries {
		out[i] = en.Endpoint
	}
	return out
}

// markDisconnected flags the round player with the given name (if one
// exists in the current round) as disconnected; it keeps simulating until
// the round ends, at which point it is dropped from future rosters.
func (e *Engine) markDisconnected(name string) {
	if name == "" || e.round == nil {
		return
	}
	if p, ok := e.round.byName[name]; ok {
		p.Disconnected = true
	}
}

// HandleClientDatagram processes one raw client->server datagram. It
// returns the events (if any) that must be unicast back to the sender; a
// nil/empty result means no unicast reply is owed. Malformed datagrams and
// cap-rejected/dropped endpoints return nil, never surfaced as errors, per
// protocol.
func (e *Engine) HandleClientDatagram(ep participant.Endpoint, raw []byte, now time.Time) []wire.Event {
	msg, err := wire.DecodeClientMessage(raw)
	if err != nil {
		return nil
	}

	action := e.table.Dispatch(ep, msg.SessionID, msg.PlayerName, now, e.onSupersede)
	switch action {
	case participant.Drop:
		return nil
	case participant.NewParticipant:
		e.contacts[ep] = &contact{Name: msg.PlayerName}
		e.applyInput(ep, msg)
		return e.log.MissingSince(msg.NextExpectedEventNo)
	case participant.ExistingParticipant:
		e.applyInput(ep, msg)
		if msg.NextExpectedEventNo < uint32(e.log.Len()) {
			return e.log.MissingSince(msg.NextExpectedEventNo)
		}
		return nil
	default:
		return nil
	}
}

// applyInput records the sender's desired turn direction, marks it ready if
// applicable, and feeds the direction into the live round player (if the
// round has started and this contact is one of its players).
func (e *Engine) applyInput(ep participant.Endpoint, msg wire.ClientMessage) {
	c, ok := e.contacts[ep]
	if !ok {
		return
	}
	c.TurnDirection = msg.TurnDirection
	if c.Name != "" && msg.TurnDirection != 0 {
		c.Ready = true
	}

	if e.round != nil && e.round.started {
		if rp, ok := e.round.byName[c.Name]; ok && c.Name != "" && !rp.Disconnected {
			rp.TurnDirection = msg.TurnDirection
		}
	}
}

func (e *Engine) onSupersede(oldName string) {
	e.markDisconnected(oldName)
}

// Sweep evicts timed-out participants and marks their round players
// disconnected.
func (e *Engine) Sweep(now time.Time) {
	e.table.Sweep(now, func(ep participant.Endpoint, name string) {
		delete(e.contacts, ep)
		e.markDisconnected(name)
	})
}

// readyCounts returns (readyNonObservers, totalNonObservers).
func (e *Engine) readyCounts() (ready, total int) {
	for _, c := range e.contacts {
		if c.Name == "" {
			continue
		}
		total++
		if c.Ready {
			ready++
		}
	}
	return ready, total
}

func (e *Engine) shouldStartRound() bool {
	if e.round != nil && e.round.started {
		return false
	}
	ready, total := e.readyCounts()
	return ready >= 2 && ready == total
}

// startRound performs NEW_GAME emission and per-player initialization.
func (e *Engine) startRound() {
	var names []string
	for _, c := range e.contacts {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)

	roundID := e.rng.Next()
	b := newBoard(e.params.Width, e.params.Height)

	r := &round{
		id:      roundID,
		started: true,
		board:   b,
		byName:  make(map[string]*roundPlayer),
	}

	e.log = eventlog.New()
	e.log.Append(wire.Event{
		Type: wire.EventNewGame,
		NewGame: wire.NewGameBody{
			MaxX:        uint32(e.params.Width),
			MaxY:        uint32(e.params.Height),
			PlayerNames: names,
		},
	})

	for i, name := range names {
		rp := &roundPlayer{Number: i, Name: name, Playing: true}

		x := float64(e.rng.Next()%uint32(e.params.Width)) + 0.5
		y := float64(e.rng.Next()%uint32(e.params.Height)) + 0.5
		heading := int(e.rng.Next() % 360)

		rp.Pos = geom.Point{X: x, Y: y}
		rp.Heading = heading

		cx, cy := rp.Pos.Cell()
		if b.IsPainted(cx, cy) {
			rp.Playing = false
			e.log.Append(wire.Event{Type: wire.EventPlayerEliminated, PlayerEliminated: wire.PlayerEliminatedBody{PlayerNumber: uint8(i)}})
		} else {
			b.Paint(cx, cy)
			e.log.Append(wire.Event{Type: wire.EventPixel, Pixel: wire.PixelBody{PlayerNumber: uint8(i), X: uint32(cx), Y: uint32(cy)}})
		}

		r.players = append(r.players, rp)
		r.byName[name] = rp

		if c := e.contactByName(name); c != nil {
			rp.TurnDirection = c.TurnDirection
		}
	}

	e.round = r

	for _, c := range e.contacts {
		c.Ready = false
	}

	e.logger.Info().Uint32("round_id", roundID).Int("players", len(names)).Msg("round started")
}

func (e *Engine) contactByName(name string) *contact {
	for _, c := range e.contacts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// endRound handles GAME_OVER: freezes the round, clears readiness, and lets
// disconnected players' rosters collapse (the round struct that held them is
// discarded in favor of a fresh one on the next startRound).
func (e *Engine) endRound() {
	e.round.started = false
	e.log.Append(wire.Event{Type: wire.EventGameOver})
	for _, c := range e.contacts {
		c.Ready = false
	}
	e.logger.Info().Uint32("round_id", e.round.id).Msg("round over")
}

// Tick advances the simulation by one step: it starts a round if the lobby
// condition is met, otherwise (or additionally, on the very next call)
// simulates one movement step for every still-playing worm, detects
// collisions/eliminations, and ends the round when one worm remains. It
// returns whether any event was appended (the server loop broadcasts
// drain_pending() exactly when this is true).
func (e *Engine) Tick(now time.Time) bool {
	before := e.log.Len()

	justStarted := false
	if e.shouldStartRound() {
		e.startRound()
		justStarted = true
	}

	if e.round != nil && e.round.started && !justStarted {
		e.simulateStep()
	}

	return e.log.Len() > before
}

func (e *Engine) simulateStep() {
	r := e.round
	for _, p := range r.players {
		if !p.Playing {
			continue
		}

		p.Heading = geom.Turn(p.Heading, e.params.TurningSpeed, p.TurnDirection)
		prevCX, prevCY := p.Pos.Cell()
		p.Pos = geom.Step(p.Pos, p.Heading)
		cx, cy := p.Pos.Cell()

		if cx == prevCX && cy == prevCY {
			continue
		}

		if !r.board.InBounds(cx, cy) || r.board.IsPainted(cx, cy) {
			p.Playing = false
			e.log.Append(wire.Event{Type: wire.EventPlayerEliminated, PlayerEliminated: wire.PlayerEliminatedBody{PlayerNumber: uint8(p.Number)}})
			continue
		}

		r.board.Paint(cx, cy)
		e.log.Append(wire.Event{Type: wire.EventPixel, Pixel: wire.PixelBody{PlayerNumber: uint8(p.Number), X: uint32(cx), Y: uint32(cy)}})
	}

	if r.playingCount() <= 1 {
		e.endRound()
	}
}
