package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"interview-guide/internal/models"
)

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	// Auto migrate
	if err := db.AutoMigrate(
		&models.Resume{},
		&models.Session{},
		&models.Question{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// At most one non-terminal session per resume. Enforced in storage so
	// that two concurrent creations cannot both slip past the resumption
	// lookup. Force-created sessions are exempt: they intentionally orphan
	// the previous active session.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_resume
		ON interview_sessions (resume_id)
		WHERE resume_id IS NOT NULL AND NOT forced AND status IN ('created', 'in_progress')
	`).Error; err != nil {
		return nil, fmt.Errorf("failed to create active session index: %w", err)
	}

	log.Println("✅ Database migration completed")

	return db, nil
}
