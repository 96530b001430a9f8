// Command client bridges one local GUI (over TCP) to a screen-worms game
// server (over UDP).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MikeWelton/screen-worms/internal/bridge"
	"github.com/MikeWelton/screen-worms/internal/clientconfig"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := clientconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Print(clientconfig.Usage())
		return 1
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	udpConn, guiConn, err := dial(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("client: failed to connect")
		return 1
	}
	defer udpConn.Close()
	defer guiConn.Close()

	sessionID := uint64(time.Now().UnixMicro())
	b := bridge.New(udpConn, guiConn, sessionID, cfg.PlayerName, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := b.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("client: loop exited with error")
		return 1
	}
	return 0
}

// dial resolves and connects both transports the bridge needs: the game
// server over UDP, and the local GUI over TCP with TCP_NODELAY set.
func dial(cfg clientconfig.Config) (*net.UDPConn, *net.TCPConn, error) {
	serverAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.GameServer, strconv.Itoa(cfg.ServerPort)))
	if err != nil {
		return nil, nil, errors.Wrap(err, "client: resolve game server")
	}
	udpConn, err := net.DialUDP("udp", nil, serverAddr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "client: dial game server")
	}

	guiAddr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(cfg.GUIHost, strconv.Itoa(cfg.GUIPort)))
	if err != nil {
		udpConn.Close()
		return nil, nil, errors.Wrap(err, "client: resolve gui")
	}
	guiConn, err := net.DialTCP("tcp", nil, guiAddr)
	if err != nil {
		udpConn.Close()
		return nil, nil, errors.Wrap(err, "client: dial gui")
	}
	if err := guiConn.SetNoDelay(true); err != nil {
		udpConn.Close()
		guiConn.Close()
		return nil, nil, errors.Wrap(err, "client: set gui TCP_NODELAY")
	}

	return udpConn, guiConn, nil
}
