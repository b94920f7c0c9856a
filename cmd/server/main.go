package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/actor"
	"matchbook/internal/httpapi"
)

const defaultAddress = "0.0.0.0:8000"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	t, ctx := tomb.WithContext(ctx)

	// Setup the symbol registry and the HTTP front door for the matching engine.
	registry := actor.NewRegistry(t)
	srv := httpapi.New(defaultAddress, registry)

	t.Go(func() error {
		return srv.Run(ctx)
	})

	<-t.Dying()
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
}
