// Package clientconfig parses and validates the client's command-line
// arguments.
package clientconfig

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config is the fully validated client configuration.
type Config struct {
	GameServer string
	PlayerName string
	ServerPort int
	GUIHost    string
	GUIPort    int
}

const usageText = `usage: client game_server [-n player_name] [-p server_port] [-i gui_host] [-r gui_port]

  game_server    hostname or IP of the game server (required, positional)
  -n player_name 0-20 ASCII bytes in [33,126], empty means observer (default "")
  -p server_port UDP port of the game server (1-65535, default 2021)
  -i gui_host    host the local GUI listens on (default "localhost")
  -r gui_port    TCP port the local GUI listens on (1-65535, default 20210)
`

// Usage returns the usage text written to standard output on invalid
// arguments.
func Usage() string {
	return usageText
}

// validName enforces the player-name constraint: 0-20 bytes, every byte in
// [33,126].
func validName(name string) bool {
	if len(name) > 20 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 33 || name[i] > 126 {
			return false
		}
	}
	return true
}

// Parse parses and validates args (typically os.Args[1:]).
func Parse(args []string) (Config, error) {
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	name := fs.StringP("name", "n", "", "player name")
	serverPort := fs.IntP("port", "p", 2021, "game server UDP port")
	guiHost := fs.StringP("gui-host", "i", "localhost", "local GUI host")
	guiPort := fs.IntP("gui-port", "r", 20210, "local GUI TCP port")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() != 1 {
		return Config{}, errors.New("expected exactly one positional argument: game_server")
	}

	if !validName(*name) {
		return Config{}, errors.Errorf("player name %q invalid: must be 0-20 bytes in [33,126]", *name)
	}
	if *serverPort < 1 || *serverPort > 65535 {
		return Config{}, errors.Errorf("server port %d out of range [1,65535]", *serverPort)
	}
	if *guiPort < 1 || *guiPort > 65535 {
		return Config{}, errors.Errorf("gui port %d out of range [1,65535]", *guiPort)
	}

	return Config{
		GameServer: fs.Arg(0),
		PlayerName: *name,
		ServerPort: *serverPort,
		GUIHost:    *guiHost,
		GUIPort:    *guiPort,
	}, nil
}
