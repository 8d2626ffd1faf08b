package models

import "time"

// Transaction types.
const (
	// TxnRent records a confirmed rental debit.
	TxnRent = "rent"
	// TxnReturn is a rent transaction settled at return time.
	TxnReturn = "return"
	// TxnTopUp credits the wallet from an external payment.
	TxnTopUp = "topup"
)

// Transaction statuses.
const (
	// TxnPending awaits manual approval (top-ups only).
	TxnPending = "pending"
	// TxnActive is a running rental.
	TxnActive = "active"
	// TxnCompleted is a settled rental.
	TxnCompleted = "completed"
	// TxnSucceeded is an applied top-up.
	TxnSucceeded = "succeeded"
	// TxnDenied is a rejected manual top-up.
	TxnDenied = "denied"
)

// Top-up methods.
const (
	// MethodManualReceipt is a user-uploaded payment receipt.
	MethodManualReceipt = "gcash-manual"
	// MethodProvider is an automated payment-provider settlement.
	MethodProvider = "provider"
)

// TransactionRecord carries the fields shared by the global and per-user
// transaction indices. Rows are immutable once created except for the status
// and settlement fields written at return or top-up approval time.
type TransactionRecord struct {
	ID string `gorm:"primaryKey;type:text"` // Shared id across both indices.

	UserUID   string `gorm:"type:text;not null;index"`            // Owning user.
	StudentID string `gorm:"type:text;not null;default:''"`       // Campus student id snapshot.
	VoltID    string `gorm:"type:text;not null;default:'';index"` // Rented unit, empty for top-ups.

	Type   string `gorm:"type:text;not null;index"`      // rent, return or topup.
	Status string `gorm:"type:text;not null;index"`      // Lifecycle status.
	Method string `gorm:"type:text;not null;default:''"` // Top-up provenance.

	Fee          float64 `gorm:"type:decimal(20,10);not null;default:0"` // Upfront rental fee.
	PenaltyFee   float64 `gorm:"type:decimal(20,10);not null;default:0"` // Overdue penalty at return.
	AmountPaid   float64 `gorm:"type:decimal(20,10);not null;default:0"` // Penalty portion covered by balance.
	DebtIncurred float64 `gorm:"type:decimal(20,10);not null;default:0"` // Penalty portion carried as debt.
	Amount       float64 `gorm:"type:decimal(20,10);not null;default:0"` // Top-up amount.

	StartTime      *time.Time `gorm:"index"`              // Rental start.
	EndTime        *time.Time                             // Rental end.
	AllowedMinutes int        `gorm:"not null;default:0"` // Plan duration.
	UsedMinutes    int        `gorm:"not null;default:0"` // Minutes actually used.
	OverdueMinutes int        `gorm:"not null;default:0"` // Minutes past plan and grace.

	ReceiptURL  string `gorm:"type:text;not null;default:''"` // Manual top-up receipt URL.
	ReceiptPath string `gorm:"type:text;not null;default:''"` // Blob path of the receipt.

	CreatedAt   time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	CompletedAt *time.Time                                  // Settlement timestamp.
}

// Transaction is the global transaction index.
type Transaction struct {
	TransactionRecord `gorm:"embedded"`
}

// TableName names the global index table.
func (Transaction) TableName() string { return "transactions" }

// UserTransaction is the per-user transaction index, dual-written with the
// global index inside the same atomic unit.
type UserTransaction struct {
	TransactionRecord `gorm:"embedded"`
}

// TableName names the per-user index table.
func (UserTransaction) TableName() string { return "user_transactions" }

// InferType fills in the type of legacy records created before the type field
// existed: both times present means return, start alone means rent, an amount
// without a fee means topup.
func (r *TransactionRecord) InferType() string {
	if r.Type != "" {
		return r.Type
	}
	switch {
	case r.StartTime != nil && r.EndTime != nil:
		return TxnReturn
	case r.StartTime != nil:
		return TxnRent
	case r.Amount > 0 && r.Fee == 0:
		return TxnTopUp
	default:
		return ""
	}
}
