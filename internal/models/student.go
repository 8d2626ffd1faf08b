package models

import "time"

// Student is a whitelist entry imported from the registrar CSV. Onboarding
// rejects accounts whose student id is not present here.
type Student struct {
	StudentID string `gorm:"primaryKey;type:text"` // Campus student id.

	FirstName string `gorm:"type:text;not null;default:''"` // Given name.
	LastName  string `gorm:"type:text;not null;default:''"` // Family name.
	Email     string `gorm:"type:text;not null;default:''"` // Campus email.
	Program   string `gorm:"type:text;not null;default:''"` // Degree program.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
