package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amira2200/pfe2025/internal/models"
)

// Initialize opens the PostgreSQL store, tunes the pool and ensures the
// retry queue schema exists. Derived tables are owned by the pipeline loader
// and migrated there.
func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.RetryOrder{}); err != nil {
		return nil, fmt.Errorf("failed to migrate retry_table: %w", err)
	}
	if err := ensureRetryRetriesColumn(db); err != nil {
		log.Warn().Err(err).Msg("retry_table migration warning")
	}

	log.Info().Msg("database initialized")
	return db, nil
}

// Close releases the underlying connection. Close failures are logged, never
// surfaced: a run that finished its work should not fail on teardown.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn().Err(err).Msg("failed to resolve connection for close")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database connection")
	}
}

// ensureRetryRetriesColumn adds the retries counter to retry_table deployments
// that predate it. Additive only.
func ensureRetryRetriesColumn(db *gorm.DB) error {
	if db.Migrator().HasColumn(&models.RetryOrder{}, "retries") {
		return nil
	}
	if err := db.Migrator().AddColumn(&models.RetryOrder{}, "Retries"); err == nil {
		log.Info().Msg("added column retries via migrator")
		return nil
	}

	// Fallback to raw SQL in case the migrator fails.
	if err := db.Exec(`ALTER TABLE retry_table ADD COLUMN IF NOT EXISTS retries INT DEFAULT 0`).Error; err != nil {
		return fmt.Errorf("failed adding retries column: %w", err)
	}
	log.Info().Msg("added column retries to retry_table")
	return nil
}
