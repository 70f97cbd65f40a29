package database

import (
	"fmt"

	"github.com/Baaaki/inmobiliaria-api/internal/config"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig is shared by the postgres connection and the in-memory test store.
// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// Connect opens the postgres store. The caller owns the handle and must Close it.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Log.Info("Database connected successfully")
	return db, nil
}

// Migrate creates or updates the users, properties and tasks tables.
// Order matters: foreign keys point from tasks to properties to users.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Property{}, &models.Task{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	logger.Log.Info("Database migration completed")
	return nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Warn("Failed to get underlying DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Log.Warn("Failed to close database", zap.Error(err))
	}
}
