package clientconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequiresGameServer(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"game.example.com"})
	require.NoError(t, err)
	require.Equal(t, "game.example.com", cfg.GameServer)
	require.Equal(t, "", cfg.PlayerName)
	require.Equal(t, 2021, cfg.ServerPort)
	require.Equal(t, "localhost", cfg.GUIHost)
	require.Equal(t, 20210, cfg.GUIPort)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]string{"game.example.com", "-n", "alice", "-p", "3000", "-i", "10.0.0.1", "-r", "9000"})
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.PlayerName)
	require.Equal(t, 3000, cfg.ServerPort)
	require.Equal(t, "10.0.0.1", cfg.GUIHost)
	require.Equal(t, 9000, cfg.GUIPort)
}

func TestParseRejectsNameWithBadByte(t *testing.T) {
	_, err := Parse([]string{"game.example.com", "-n", "bad name"})
	require.Error(t, err)
}

func TestParseRejectsNameTooLong(t *testing.T) {
	_, err := Parse([]string{"game.example.com", "-n", "012345678901234567890"})
	require.Error(t, err)
}
