package rental

import "github.com/volt-campus/VoltRentalAPI/internal/fault"

// Business-rule rejections surfaced by the lifecycle engine. These are
// precondition failures: the caller sees them verbatim and nothing is written.
var (
	// ErrInsufficientFunds rejects a rent whose fee exceeds the balance.
	ErrInsufficientFunds = fault.New(fault.KindPrecondition, "insufficient_funds",
		"insufficient wallet balance for this fee")
	// ErrInsufficientMinimumBalance rejects a rent below the plan's minimum
	// balance even when the fee itself is covered.
	ErrInsufficientMinimumBalance = fault.New(fault.KindPrecondition, "insufficient_minimum_balance",
		"wallet balance below the minimum required for this plan")
	// ErrVoltUnavailable rejects a rent on a volt that is already rented or
	// pulled for maintenance.
	ErrVoltUnavailable = fault.New(fault.KindPrecondition, "volt_unavailable",
		"volt is not available for rent")
	// ErrVoltNotDocked rejects a return without physical-presence proof.
	ErrVoltNotDocked = fault.New(fault.KindPrecondition, "volt_not_docked",
		"volt is not docked and charging")
	// ErrNoActiveRental rejects a return with no active rent transaction.
	ErrNoActiveRental = fault.New(fault.KindPrecondition, "no_active_rental",
		"no active rental found for this volt")
)
