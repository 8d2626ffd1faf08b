package models

import "time"

// Wallet holds the per-user stored-value balance and carried debt.
//
// CurrentBalance is signed; a negative value represents debt carried on the
// balance itself. UnpaidDebt accumulates penalty amounts the balance could not
// cover at return time and never goes negative. Both fields are mutated only
// inside a ledger atomic unit that also writes a transaction record.
type Wallet struct {
	UserUID string `gorm:"primaryKey;type:text"` // Owning user.

	CurrentBalance float64 `gorm:"type:decimal(20,10);not null;default:0"` // Spendable balance.
	UnpaidDebt     float64 `gorm:"type:decimal(20,10);not null;default:0"` // Cumulative unpaid penalties.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
