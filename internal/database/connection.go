// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	// Connect to database
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("driver", cfg.Driver).Info("Database connection established successfully")
	return db, nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Purchase{},
		&models.LedgerEntry{},
		&models.Rating{},
		&models.Review{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_files_catalog ON files(review_status, is_active, is_public)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_buyer_created ON purchases(buyer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_file_status ON purchases(file_id, payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_created ON ledger_entries(account_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_file_status ON reviews(file_id, review_status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_activity_logs_user_action ON activity_logs(user_id, action)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData creates the default admin account when none exists.
func SeedInitialData(db *gorm.DB, password string) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	if err := db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@filemart.local",
			UserType: models.UserTypeAdmin,
			Status:   models.UserStatusActive,
		}

		if err := admin.SetPassword(password); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		logrus.Info("Default admin user created successfully")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}
