package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"reservationapi/internal/model"
	"reservationapi/pkg/logger"
)

// Migrate 建表：contact_methods、reservations 以及关联表 reservation_contact_methods
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(
		&model.ContactMethod{},
		&model.Reservation{},
	); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
