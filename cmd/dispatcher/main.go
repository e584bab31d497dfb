// Command dispatcher drains the retry queue on a fixed interval, forwarding
// pending orders to the ERP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/database"
	"github.com/amira2200/pfe2025/internal/services/blob"
	"github.com/amira2200/pfe2025/internal/services/cegid"
	"github.com/amira2200/pfe2025/internal/services/dispatch"
	"github.com/amira2200/pfe2025/internal/services/mailer"
)

func main() {
	interval := flag.Duration("interval", 5*time.Minute, "time between dispatch passes")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	blobs, err := blob.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	processor := dispatch.NewProcessor(db, cegid.NewClient(cfg), blobs, mailer.New(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("interval", *interval).Msg("dispatcher started")
	runPass(ctx, processor)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("dispatcher stopping")
			return
		case <-ticker.C:
			runPass(ctx, processor)
		}
	}
}

func runPass(ctx context.Context, processor *dispatch.Processor) {
	if _, err := processor.Run(ctx); err != nil {
		log.Error().Err(err).Msg("dispatch pass failed")
	}
}
