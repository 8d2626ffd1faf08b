package models

import (
	"time"

	"gorm.io/datatypes"
)

// User roles.
const (
	// RoleUser is a regular student account.
	RoleUser = "user"
	// RoleAdmin marks an account with admin console access.
	RoleAdmin = "admin"
)

// User represents a student account provisioned on first login.
// Identity verification is delegated to the external provider; UID is the
// provider subject.
type User struct {
	UID string `gorm:"primaryKey;type:text"` // Identity-provider subject.

	Email     string `gorm:"type:text;not null;index"`          // Login email.
	FirstName string `gorm:"type:text;not null;default:''"`     // Given name.
	LastName  string `gorm:"type:text;not null;default:''"`     // Family name.
	StudentID string `gorm:"type:text;not null;default:''"`     // Campus student id.
	Role      string `gorm:"type:text;not null;default:'user'"` // user or admin.

	CurrentVolts datatypes.JSONSlice[string] `gorm:"not null"` // Volt ids currently held.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
