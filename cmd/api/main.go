package main

import (
	"context"

	"github.com/marketpulse/core/internal/config"
	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/server"
)

func main() {
	// Setup structured logging
	logger.SetupLogger()
	log := logger.New("api-service")

	// Load configuration
	cfg := config.Load()

	// Create and configure server
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("action", "server_creation_failed").
			Msg("Failed to create server")
	}
	defer srv.Close()

	// Watch the settings file so edits made outside the API still
	// re-render the scheduler file.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := srv.Settings().Watch(ctx); err != nil {
			log.Error().
				Err(err).
				Str("action", "settings_watch_failed").
				Msg("Settings watcher stopped")
		}
	}()

	// Start server
	if err := srv.Start(); err != nil {
		log.Fatal().
			Err(err).
			Str("action", "server_failed").
			Msg("Server failed to start")
	}
}
