package serverconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, 2021, cfg.Port)
	require.Equal(t, 6, cfg.Params.TurningSpeed)
	require.Equal(t, 50, cfg.Params.RoundsPerSec)
	require.Equal(t, 640, cfg.Params.Width)
	require.Equal(t, 480, cfg.Params.Height)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]string{"-p", "3000", "-t", "10", "-v", "100", "-w", "100", "-h", "100", "-s", "777"})
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, 10, cfg.Params.TurningSpeed)
	require.Equal(t, 100, cfg.Params.RoundsPerSec)
	require.Equal(t, 100, cfg.Params.Width)
	require.Equal(t, 100, cfg.Params.Height)
	require.EqualValues(t, 777, cfg.Params.Seed)
}

func TestParseRejectsOutOfRangeTurningSpeed(t *testing.T) {
	_, err := Parse([]string{"-t", "91"})
	require.Error(t, err)
}

func TestParseRejectsOutOfRangePort(t *testing.T) {
	_, err := Parse([]string{"-p", "70000"})
	require.Error(t, err)
}

func TestParseRejectsPositionalArgs(t *testing.T) {
	_, err := Parse([]string{"extra"})
	require.Error(t, err)
}
