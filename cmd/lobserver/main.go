// Command lobserver runs the TCP matching-engine server: one symbol,
// one Book, one Engine, reachable over the binary wire protocol
// implemented by internal/wireserver.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"lobengine/internal/engine"
	"lobengine/internal/wireserver"
)

func main() {
	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 9001, "port to listen on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eng := engine.New()
	srv := wireserver.New(*address, *port, eng)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server exited with error")
		}
	}()

	<-ctx.Done()
	srv.Shutdown()
}
