// Package eventlog is the append-only event buffer for one round: a
// monotone event-number sequence plus a broadcast cursor, replaced wholesale
// on every NEW_GAME.
package eventlog

import "github.com/MikeWelton/screen-worms/internal/wire"

// Log is an append-only sequence of events with a "first not yet broadcast"
// cursor. It favors index-based views over copying: MissingSince and
// DrainPending both return slices into the backing array.
type Log struct {
	events          []wire.Event
	broadcastCursor uint32
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append assigns event.EventNo = len(events) and appends it.
func (l *Log) Append(e wire.Event) wire.Event {
	e.EventNo = uint32(len(l.events))
	l.events = append(l.events, e)
	return e
}

// Len returns the number of events appended so far.
func (l *Log) Len() int {
	return len(l.events)
}

// MissingSince returns events[k:] when k <= len(events), or nil otherwise.
func (l *Log) MissingSince(k uint32) []wire.Event {
	if k > uint32(len(l.events)) {
		return nil
	}
	return l.events[k:]
}

// DrainPending returns events[broadcastCursor:] and advances the cursor to
// len(events).
func (l *Log) DrainPending() []wire.Event {
	pending := l.events[l.broadcastCursor:]
	l.broadcastCursor = uint32(len(l.events))
	return pending
}
