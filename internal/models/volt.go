package models

import "time"

// Volt status values.
const (
	// VoltAvailable means the unit is docked and rentable.
	VoltAvailable = "available"
	// VoltReserved means the unit is held for a user ahead of rent confirm.
	VoltReserved = "reserved"
	// VoltRented means the unit is out with a user.
	VoltRented = "rented"
	// VoltMaintenance takes the unit out of circulation.
	VoltMaintenance = "maintenance"
)

// SensorCharging is the dock sensor state proving a unit is physically docked.
// Return requires it before settling a rental.
const SensorCharging = "CHARGING"

// Volt represents one physical power-bank unit in the device registry.
//
// Invariant: Status == rented exactly when the occupant fields and the rental
// window (StartTime, DurationMinutes) are all set; Status == available exactly
// when all of them are clear.
type Volt struct {
	ID string `gorm:"primaryKey;type:text"` // Zero-padded unit id, e.g. "007".

	Status string `gorm:"type:text;not null;default:'available';index"` // Lifecycle state.

	StudentUID      *string    `gorm:"type:text"` // Occupant user UID.
	StudentID       *string    `gorm:"type:text"` // Occupant campus student id.
	StartTime       *time.Time // Rental window start.
	DurationMinutes *int       // Allowed rental minutes.
	ReservedAt      *time.Time // Reservation time, if reserved.

	BatteryLevel int    `gorm:"not null;default:0"`            // Externally reported charge percent.
	SensorState  string `gorm:"type:text;not null;default:''"` // Externally reported dock sensor state.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Rented reports whether the volt carries a full occupant and rental window.
func (v *Volt) Rented() bool {
	return v.Status == VoltRented &&
		v.StudentUID != nil && v.StudentID != nil &&
		v.StartTime != nil && v.DurationMinutes != nil
}
