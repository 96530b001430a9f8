package eventlog

import (
	"testing"

	"github.com/MikeWelton/screen-worms/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsMonotoneEventNo(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		e := l.Append(wire.Event{Type: wire.EventPixel})
		require.EqualValues(t, i, e.EventNo)
	}
	require.Equal(t, 5, l.Len())
}

func TestMissingSince(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Append(wire.Event{Type: wire.EventPixel})
	}
	require.Len(t, l.MissingSince(1), 2)
	require.Len(t, l.MissingSince(3), 0)
	require.Nil(t, l.MissingSince(4))
}

func TestDrainPendingAdvancesCursor(t *testing.T) {
	l := New()
	l.Append(wire.Event{Type: wire.EventPixel})
	l.Append(wire.Event{Type: wire.EventPixel})

	pending := l.DrainPending()
	require.Len(t, pending, 2)

	require.Empty(t, l.DrainPending())

	l.Append(wire.Event{Type: wire.EventPixel})
	require.Len(t, l.DrainPending(), 1)
}
