// Package participant tracks the server's view of connected UDP endpoints:
// identity, session supersession, and the 2-second inactivity timeout. It is
// exclusively owned and mutated by the single-threaded server loop.
package participant

import (
	"net"
	"time"
)

// MaxParticipants is the global cap on registered endpoints.
const MaxParticipants = 25

// Timeout is the inactivity window after which an entry is evicted.
const Timeout = 2 * time.Second

// Endpoint is a normalized (IP, port) pair, byte-wise comparable so that
// IPv4-mapped IPv6 addresses compare equal to their IPv4 form (dual-stack
// listener).
type Endpoint struct {
	IP   [16]byte
	Port int
}

// EndpointFromUDPAddr normalizes a *net.UDPAddr into an Endpoint.
func EndpointFromUDPAddr(addr *net.UDPAddr) Endpoint {
	var e Endpoint
	copy(e.IP[:], addr.IP.To16())
	e.Port = addr.Port
	return e
}

// Entry is one participant: the identity claimed by its current session, and
// the time its last valid datagram was observed.
type Entry struct {
	Endpoint   Endpoint
	SessionID  uint64
	PlayerName string
	LastRxTime time.Time
}

// Action is the dispatch outcome for an incoming datagram.
type Action int

const (
	// Drop means the datagram must be discarded without any state change.
	Drop Action = iota
	// NewParticipant means a fresh entry was created (first contact, or a
	// session supersession that replaced a stale entry).
	NewParticipant
	// ExistingParticipant means the datagram refreshed an already-known
	// entry's timer.
	ExistingParticipant
)

// Table is the endpoint-keyed participant map.
type Table struct {
	byEndpoint map[Endpoint]*Entry
}

// NewTable returns an empty participant table.
func NewTable() *Table {
	return &Table{byEndpoint: make(map[Endpoint]*Entry)}
}

// Len returns the number of registered endpoints.
func (t *Table) Len() int {
	return len(t.byEndpoint)
}

// Entries returns a snapshot slice of all current entries, for iteration by
// the caller (e.g. to broadcast or to check readiness).
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.byEndpoint))
	for _, e := range t.byEndpoint {
		out = append(out, e)
	}
	return out
}

// Lookup returns the entry registered for endpoint, if any.
func (t *Table) Lookup(ep Endpoint) (*Entry, bool) {
	e, ok := t.byEndpoint[ep]
	return e, ok
}

// Dispatch applies the admission rules from the participant-table contract
// to an incoming (endpoint, session_id, name) triple. onSupersede, if
// non-nil, is called with the name of the entry being replaced by a
// strictly-greater session_id, so the engine can mark that player
// disconnected.
func (t *Table) Dispatch(ep Endpoint, sessionID uint64, name string, now time.Time, onSupersede func(oldName string)) Action {
	existing, ok := t.byEndpoint[ep]
	if !ok {
		if len(t.byEndpoint) >= MaxParticipants {
			return Drop
		}
		t.byEndpoint[ep] = &Entry{Endpoint: ep, SessionID: sessionID, PlayerName: name, LastRxTime: now}
		return NewParticipant
	}

	switch {
	case sessionID == existing.SessionID:
		if name != existing.PlayerName {
			return Drop
		}
		existing.LastRxTime = now
		return ExistingParticipant
	case sessionID > existing.SessionID:
		oldName := existing.PlayerName
		if onSupersede != nil && oldName != "" {
			onSupersede(oldName)
		}
		t.byEndpoint[ep] = &Entry{Endpoint: ep, SessionID: sessionID, PlayerName: name, LastRxTime: now}
		return NewParticipant
	default: // sessionID < existing.SessionID
		return Drop
	}
}

// Sweep removes entries whose LastRxTime is Timeout or more before now,
// invoking onEvict for each with the evicted endpoint and player name.
func (t *Table) Sweep(now time.Time, onEvict func(ep Endpoint, name string)) {
	for ep, e := range t.byEndpoint {
		if now.Sub(e.LastRxTime) >= Timeout {
			delete(t.byEndpoint, ep)
			if onEvict != nil {
				onEvict(ep, e.PlayerName)
			}
		}
	}
}
