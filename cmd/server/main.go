package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/E1Shivank/whispr/internal/adapters/http"
	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/app/orch"
	"github.com/E1Shivank/whispr/internal/config"
	"github.com/E1Shivank/whispr/internal/storage/links"
	"github.com/E1Shivank/whispr/internal/storage/links/badgerstore"
	"github.com/E1Shivank/whispr/internal/storage/links/memstore"
	"github.com/E1Shivank/whispr/internal/storage/links/sqlitestore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	store, err := openLinkStore(cfg.Links)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Links.Driver).Msg("failed to open link store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close link store")
		}
	}()

	policy, err := app.PolicyByName(cfg.BackpressurePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backpressure policy")
	}

	r, err := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:  orch.New(policy),
		Links: links.NewService(store),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up router")
	}
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("whispr relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Mode == "release" {
		// JSON lines in production.
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func openLinkStore(cfg config.Links) (links.Store, error) {
	switch cfg.Driver {
	case "badger":
		return badgerstore.Open(cfg.Path)
	case "sqlite":
		return sqlitestore.Open(cfg.Path)
	default:
		return memstore.New(), nil
	}
}
