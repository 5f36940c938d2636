package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codmsocial-backend/bootstrap"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a, err := bootstrap.New(ctx)
	if err == nil {
		err = run(ctx, a)
	}
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// run serves a until ctx is cancelled or Listen fails, then closes a.
func run(ctx context.Context, a *bootstrap.App) error {
	defer a.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		if err := a.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", a.Config.Port).Msgf("server running at http://localhost:%s (health: /health/json)", a.Config.Port)
	if err := a.Fiber.Listen(":" + a.Config.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
