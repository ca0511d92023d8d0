package database

import (
	"fmt"
	"log/slog"
	"time"

	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres and brings the schema up to date.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	slog.Info("database connected, migration complete")
	return db, nil
}

// GormConfig is shared with tests that open other dialects.
// Cross-table links are plain ids: no foreign keys are created, so a record
// can outlive the record it points at.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true, // lookups report misses as nil
				Colorful:                  false,
			},
		),
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Collector{},
		&models.Transport{},
		&models.Processing{},
		&models.LabTest{},
		&models.ProductBatch{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
