package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailbridge/internal/domain/entities"
)

// Open открывает базу данных с таблицей LVAL и при необходимости создает схему
func Open(cfg entities.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных %s: %w", cfg.Path, err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&Lval{}); err != nil {
			return nil, fmt.Errorf("ошибка миграции схемы: %w", err)
		}
	}

	return db, nil
}

// Close закрывает соединение с базой данных
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
