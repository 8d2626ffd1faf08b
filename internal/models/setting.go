package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a DB-backed configuration value. Pricing policy constants live
// here so operators can adjust them without a deploy.
type Setting struct {
	Key string `gorm:"primaryKey;type:text"` // Setting key.

	Value datatypes.JSON `gorm:"not null"` // Raw JSON value.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
