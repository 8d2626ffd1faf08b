package db

import (
	"fmt"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema for all registry, ledger and console tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Volt{},
		&models.Transaction{},
		&models.UserTransaction{},
		&models.Student{},
		&models.Admin{},
		&models.Setting{},
	)
}
