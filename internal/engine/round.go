package engine

import "github.com/MikeWelton/screen-worms/internal/geom"

// roundPlayer is the in-round state for one worm, distinct from the fields
// (ready, last-message timer) that belong to the connection-level contact
// rather than the simulated worm.
type roundPlayer struct {
	Number        int
	Name          string
	Pos           geom.Point
	Heading       int
	TurnDirection uint8
	Playing       bool
	Disconnected  bool
}

// round is one instance of gameplay: the board, its players, and whether
// simulation has started.
type round struct {
	id      uint32
	started bool
	board   *board
	players []*roundPlayer
	byName  map[string]*roundPlayer
}

// playingCount returns how many players are still in the round.
func (r *round) playingCount() int {
	n := 0
	for _, p := range r.players {
		if p.Playing {
			n++
		}
	}
	return n
}
