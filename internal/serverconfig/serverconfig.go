// Package serverconfig parses and validates the server's command-line
// flags.
package serverconfig

import (
	"io"
	"time"

	"github.com/MikeWelton/screen-worms/internal/engine"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config is the fully validated server configuration.
type Config struct {
	Port   int
	Params engine.Params
}

const usageText = `usage: server [-p port] [-s seed] [-t turning_speed] [-v rounds_per_sec] [-w width] [-h height]

  -p port             UDP listen port (1-65535, default 2021)
  -s seed             RNG seed (0-4294967295, default current time)
  -t turning_speed    degrees per tick (1-90, default 6)
  -v rounds_per_sec   ticks per second (1-250, default 50)
  -w width            board width (16-1920, default 640)
  -h height           board height (16-1080, default 480)
`

// Usage returns the usage text written to standard output on invalid
// arguments.
func Usage() string {
	return usageText
}

// Parse parses and validates args (typically os.Args[1:]). Any failure
// (unparseable flag or out-of-range value) is reported as an error; the
// caller is expected to print Usage() and exit(1) in that case.
func Parse(args []string) (Config, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	port := fs.IntP("port", "p", 2021, "UDP listen port")
	seed := fs.Uint32P("seed", "s", uint32(time.Now().UnixNano()), "RNG seed")
	turningSpeed := fs.IntP("turning-speed", "t", 6, "turning speed in degrees/tick")
	roundsPerSec := fs.IntP("rounds-per-sec", "v", 50, "ticks per second")
	width := fs.IntP("width", "w", 640, "board width")
	height := fs.IntP("height", "h", 480, "board height")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() != 0 {
		return Config{}, errors.Errorf("unexpected positional arguments: %v", fs.Args())
	}

	if *port < 1 || *port > 65535 {
		return Config{}, errors.Errorf("port %d out of range [1,65535]", *port)
	}

	params := engine.Params{
		TurningSpeed: *turningSpeed,
		Width:        *width,
		Height:       *height,
		Seed:         *seed,
		RoundsPerSec: *roundsPerSec,
	}
	if err := params.Validate(); err != nil {
		return Config{}, err
	}

	return Config{Port: *port, Params: params}, nil
}
