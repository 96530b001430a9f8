package participant

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ep(i int) Endpoint {
	addr := &net.UDPAddr{IP: net.ParseIP(fmt.Sprintf("10.0.0.%d", i%254+1)), Port: 10000 + i}
	return EndpointFromUDPAddr(addr)
}

func TestDispatchNewAndExisting(t *testing.T) {
	tbl := NewTable()
	now := time.Now()

	act := tbl.Dispatch(ep(1), 100, "alice", now, nil)
	require.Equal(t, NewParticipant, act)
	require.Equal(t, 1, tbl.Len())

	act = tbl.Dispatch(ep(1), 100, "alice", now.Add(time.Second), nil)
	require.Equal(t, ExistingParticipant, act)
	require.Equal(t, 1, tbl.Len())
}

func TestDispatchNameMismatchSameSessionDrops(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	tbl.Dispatch(ep(1), 100, "alice", now, nil)

	act := tbl.Dispatch(ep(1), 100, "mallory", now, nil)
	require.Equal(t, Drop, act)
}

func TestDispatchSessionSupersession(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	tbl.Dispatch(ep(1), 100, "alice", now, nil)

	var superseded string
	act := tbl.Dispatch(ep(1), 200, "alice2", now.Add(500*time.Millisecond), func(oldName string) {
		superseded = oldName
	})
	require.Equal(t, NewParticipant, act)
	require.Equal(t, "alice", superseded)

	e, ok := tbl.Lookup(ep(1))
	require.True(t, ok)
	require.EqualValues(t, 200, e.SessionID)
	require.Equal(t, "alice2", e.PlayerName)
}

func TestDispatchStaleSessionDrops(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	tbl.Dispatch(ep(1), 200, "alice", now, nil)

	act := tbl.Dispatch(ep(1), 100, "alice", now, nil)
	require.Equal(t, Drop, act)
}

func TestCapEnforced(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	for i := 0; i < 100; i++ {
		tbl.Dispatch(ep(i), uint64(i)+1, fmt.Sprintf("p%d", i), now, nil)
	}
	require.Equal(t, MaxParticipants, tbl.Len())
}

func TestSweepEvictsStale(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	tbl.Dispatch(ep(1), 1, "alice", now, nil)
	tbl.Dispatch(ep(2), 1, "bob", now, nil)

	var evicted []string
	tbl.Sweep(now.Add(Timeout), func(_ Endpoint, name string) { evicted = append(evicted, name) })

	require.ElementsMatch(t, []string{"alice", "bob"}, evicted)
	require.Equal(t, 0, tbl.Len())
}

func TestSweepKeepsFresh(t *testing.T) {
	tbl := NewTable()
	now := time.Now()
	tbl.Dispatch(ep(1), 1, "alice", now, nil)

	tbl.Sweep(now.Add(Timeout/2), nil)
	require.Equal(t, 1, tbl.Len())
}
