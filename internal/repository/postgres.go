package repository

import (
	"fmt"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/entities"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDatabase(cfg *datahub.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. Check/Create DB logic
	dsnRoot := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword)

	rootDB, err := gorm.Open(postgres.Open(dsnRoot), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to root postgres db: %w", err)
	}

	var exists bool
	checkQuery := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = '%s')", cfg.DBName)
	if err := rootDB.Raw(checkQuery).Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("check db existence: %w", err)
	}

	if !exists {
		log.Info("database does not exist, creating", zap.String("db", cfg.DBName))
		if err := rootDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.DBName)).Error; err != nil {
			return nil, fmt.Errorf("create database: %w", err)
		}
	}

	sqlDB, _ := rootDB.DB()
	sqlDB.Close()

	// 2. Connect to App DB
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to application database: %w", err)
	}

	// 3. Migrate schema
	if err := db.AutoMigrate(
		&entities.SensorRecord{},
		&entities.AnomalyRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("✅ database ready", zap.String("db", cfg.DBName))
	return db, nil
}
