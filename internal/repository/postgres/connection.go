package postgres

import (
	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(cfg *config.Config) (*gorm.DB, error) {
	logMode := logger.Warn
	if cfg.IsDevelopment() {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Pool limits; ConnMaxLifetime doubles as the backstop that reclaims
	// an abandoned connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.UserPreferences{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
