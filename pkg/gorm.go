package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/quiz-engine/internal/config"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// InitDatabase opens the attempt store. SQL statement logging is enabled
// only in development; attempt rows carry jsonb answer blobs that flood
// the log otherwise.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Error
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:      logger.Default.LogMode(logLevel),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to quiz database: %w", err)
	}

	return db, nil
}

// Migrate creates the lesson step and quiz attempt tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.LessonStep{}, &models.QuizAttempt{})
}
