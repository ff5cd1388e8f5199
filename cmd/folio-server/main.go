package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nmisra/folio/internal/cache"
	"github.com/nmisra/folio/internal/clients/googlefin"
	"github.com/nmisra/folio/internal/clients/yahoo"
	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/holdings"
	"github.com/nmisra/folio/internal/server"
	"github.com/nmisra/folio/internal/services/snapshot"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	common.PrintBanner(config, logger)

	// The holdings definition is read once at startup; a malformed file is
	// fatal here rather than degrading every snapshot after it.
	source, err := holdings.Load(config.Holdings.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", config.Holdings.Path).Msg("Failed to load holdings")
	}

	quoteCache := cache.New(config.Cache.GetTTL(), config.Cache.GetSweep())

	yahooClient := yahoo.NewClient(quoteCache,
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	googleClient := googlefin.NewClient(quoteCache,
		googlefin.WithBaseURL(config.Clients.Google.BaseURL),
		googlefin.WithRateLimit(config.Clients.Google.RateLimit),
		googlefin.WithTimeout(config.Clients.Google.GetTimeout()),
		googlefin.WithUserAgent(config.Clients.Google.UserAgent),
		googlefin.WithLogger(logger),
	)

	snapshotService := snapshot.NewService(yahooClient, googleClient, logger)

	srv := server.NewServer(config, logger, source, snapshotService)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d/api/portfolio", config.Server.Port)).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	common.PrintShutdownBanner(logger)
}

// resolveConfigPath checks FOLIO_CONFIG, then the binary directory, then the
// development fallback.
func resolveConfigPath() string {
	if path := os.Getenv("FOLIO_CONFIG"); path != "" {
		return path
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "folio.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "config/folio.toml"
}
