// Command server runs the authoritative screen-worms game server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeWelton/screen-worms/internal/server"
	"github.com/MikeWelton/screen-worms/internal/serverconfig"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := serverconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Print(serverconfig.Usage())
		return 1
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	srv, err := server.New(cfg.Port, cfg.Params, logger)
	if err != nil {
		logger.Error().Err(err).Msg("server: failed to start")
		return 1
	}
	defer srv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server: loop exited with error")
		return 1
	}
	return 0
}
