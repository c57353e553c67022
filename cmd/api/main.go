package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"futureself/internal/auth"
	"futureself/internal/database"
	"futureself/internal/server"
	"futureself/internal/utility"
	"github.com/rs/zerolog/log"
)

const shutdownGrace = 5 * time.Second

// gracefulShutdown waits for SIGINT/SIGTERM, gives in-flight requests
// shutdownGrace to finish and then signals done.
func gracefulShutdown(apiServer *http.Server, done chan<- struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutdown signal received, draining connections (Ctrl+C again to force)")
	stop() // a second signal kills the process

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shut down")
	}
	if n := utility.CloseChatClients(); n > 0 {
		log.Info().Int("sockets", n).Msg("Closed open chat sockets")
	}

	close(done)
}

func main() {
	utility.ConfigureLogger()

	dbService := database.NewService()
	defer dbService.Close()

	// Chat stays up without a secret; the protected routes answer 401.
	if err := auth.InitAuth(); err != nil {
		log.Warn().Err(err).Msg("Authentication disabled, protected routes will reject every request")
	}

	apiServer := server.NewServer()

	done := make(chan struct{})
	go gracefulShutdown(apiServer, done)

	log.Info().Str("addr", apiServer.Addr).Msg("Future self API listening")
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
