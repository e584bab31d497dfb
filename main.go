package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/amira2200/pfe2025/internal/api"
	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/database"
	"github.com/amira2200/pfe2025/internal/services/blob"
	"github.com/amira2200/pfe2025/internal/services/cegid"
	"github.com/amira2200/pfe2025/internal/services/dispatch"
	"github.com/amira2200/pfe2025/internal/services/mailer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogging(cfg)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close(db)

	blobs, err := blob.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := blobs.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to ensure storage bucket")
	}
	cancel()

	erp := cegid.NewClient(cfg)
	mails := mailer.New(cfg)
	processor := dispatch.NewProcessor(db, erp, blobs, mails)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	handler := api.NewAPIHandler(db, cfg, blobs, processor)
	api.SetupRoutes(router, handler)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
