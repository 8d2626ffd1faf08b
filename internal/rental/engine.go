// Package rental implements the Volt lifecycle engine: reserve, rent, return
// and the fee/penalty math behind them. Every monetary effect commits through
// one ledger atomic unit so a failed operation leaves no partial writes.
package rental

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// Engine orchestrates the Volt lifecycle against the ledger store.
type Engine struct {
	store  *ledger.Store
	policy func() Policy
	now    func() time.Time
}

// NewEngine constructs an Engine reading policy from the settings snapshot.
func NewEngine(store *ledger.Store) *Engine {
	return &Engine{
		store:  store,
		policy: PolicyFromSettings,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithPolicy overrides the policy source. Test hook.
func (e *Engine) WithPolicy(policy func() Policy) *Engine {
	e.policy = policy
	return e
}

// Reserve marks a volt as held for a user ahead of rent confirmation. It is a
// best-effort UI convenience: no transaction is created and the authoritative
// transition happens at Rent.
func (e *Engine) Reserve(ctx context.Context, voltID, userUID, studentID string) error {
	if voltID == "" {
		return fault.Validation("missing volt id")
	}
	now := e.now()
	res := e.store.DB().WithContext(ctx).Model(&models.Volt{}).
		Where("id = ?", voltID).
		Updates(map[string]any{
			"status":      models.VoltReserved,
			"student_uid": userUID,
			"student_id":  studentID,
			"reserved_at": now,
		})
	if res.Error != nil {
		return fault.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("volt", voltID)
	}
	return nil
}

// Release clears a reservation back to available.
func (e *Engine) Release(ctx context.Context, voltID string) error {
	if voltID == "" {
		return fault.Validation("missing volt id")
	}
	res := e.store.DB().WithContext(ctx).Model(&models.Volt{}).
		Where("id = ?", voltID).
		Updates(map[string]any{
			"status":           models.VoltAvailable,
			"student_uid":      nil,
			"student_id":       nil,
			"start_time":       nil,
			"duration_minutes": nil,
			"reserved_at":      nil,
		})
	if res.Error != nil {
		return fault.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("volt", voltID)
	}
	return nil
}

// RentParams are the inputs to a rent confirmation.
type RentParams struct {
	UserUID         string
	VoltID          string
	Fee             float64
	DurationMinutes int
}

// RentResult reports the outcome of a confirmed rent.
type RentResult struct {
	TransactionID    string  `json:"transactionId"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Rent confirms a rental: it checks the fee and the plan's minimum balance
// against a freshly locked wallet, then debits the wallet, creates the dual
// transaction records, marks the volt rented and appends it to the user's held
// set, all in one commit group.
func (e *Engine) Rent(ctx context.Context, params RentParams) (*RentResult, error) {
	if params.VoltID == "" {
		return nil, fault.Validation("missing volt id")
	}
	if params.Fee < 0 {
		return nil, fault.Validation("negative fee")
	}
	if params.DurationMinutes <= 0 {
		return nil, fault.Validation("missing rental duration")
	}

	policy := e.policy()
	requiredMinBalance := policy.RequiredMinBalance(params.DurationMinutes)
	startTime := e.now()
	txnID := uuid.NewString()

	var result RentResult
	errAtomic := e.store.Atomic(ctx, func(tx *gorm.DB) error {
		// Every read here feeds a write later in the group, so each one takes
		// the row lock up front. Losers of a race re-evaluate against the
		// committed row instead of settling on a stale snapshot.
		var user models.User
		if errUser := ledger.Locked(tx).Where("uid = ?", params.UserUID).First(&user).Error; errUser != nil {
			if errors.Is(errUser, gorm.ErrRecordNotFound) {
				return fault.NotFound("user", params.UserUID)
			}
			return errUser
		}

		var volt models.Volt
		if errVolt := ledger.Locked(tx).Where("id = ?", params.VoltID).First(&volt).Error; errVolt != nil {
			if errors.Is(errVolt, gorm.ErrRecordNotFound) {
				return fault.NotFound("volt", params.VoltID)
			}
			return errVolt
		}
		if volt.Status == models.VoltRented || volt.Status == models.VoltMaintenance {
			return ErrVoltUnavailable
		}
		if volt.Status == models.VoltReserved && volt.StudentUID != nil && *volt.StudentUID != params.UserUID {
			return ErrVoltUnavailable
		}

		wallet, errWallet := ledger.WalletForUpdate(tx, params.UserUID)
		if errWallet != nil {
			return errWallet
		}
		if wallet.CurrentBalance < params.Fee {
			return ErrInsufficientFunds
		}
		if wallet.CurrentBalance < requiredMinBalance {
			return ErrInsufficientMinimumBalance
		}

		newBalance := wallet.CurrentBalance - params.Fee
		if errDebit := tx.Model(&models.Wallet{}).
			Where("user_uid = ?", params.UserUID).
			Update("current_balance", newBalance).Error; errDebit != nil {
			return errDebit
		}

		rec := models.TransactionRecord{
			ID:             txnID,
			UserUID:        params.UserUID,
			StudentID:      user.StudentID,
			VoltID:         params.VoltID,
			Type:           models.TxnRent,
			Status:         models.TxnActive,
			Fee:            params.Fee,
			StartTime:      &startTime,
			AllowedMinutes: params.DurationMinutes,
		}
		if errCreate := ledger.CreateTransaction(tx, rec); errCreate != nil {
			return errCreate
		}

		if errVoltUpdate := tx.Model(&models.Volt{}).
			Where("id = ?", params.VoltID).
			Updates(map[string]any{
				"status":           models.VoltRented,
				"student_uid":      params.UserUID,
				"student_id":       user.StudentID,
				"start_time":       startTime,
				"duration_minutes": params.DurationMinutes,
				"reserved_at":      nil,
			}).Error; errVoltUpdate != nil {
			return errVoltUpdate
		}

		held := datatypes.JSONSlice[string](appendVolt(user.CurrentVolts, params.VoltID))
		if errHeld := tx.Model(&models.User{}).
			Where("uid = ?", params.UserUID).
			Update("current_volts", held).Error; errHeld != nil {
			return errHeld
		}

		result = RentResult{TransactionID: txnID, RemainingBalance: newBalance}
		return nil
	})
	if errAtomic != nil {
		return nil, errAtomic
	}

	log.WithFields(log.Fields{
		"user":     params.UserUID,
		"volt":     params.VoltID,
		"fee":      params.Fee,
		"duration": params.DurationMinutes,
		"txn":      txnID,
	}).Info("rent confirmed")
	return &result, nil
}

// ReturnResult summarizes a settled return.
type ReturnResult struct {
	TransactionID      string  `json:"transactionId"`
	UsedMinutes        int     `json:"usedMinutes"`
	AllowedMinutes     int     `json:"allowedMinutes"`
	OverdueMinutes     int     `json:"overdueMinutes"`
	PenaltyFee         float64 `json:"penaltyFee"`
	AmountPaid         float64 `json:"amountPaid"`
	DebtIncurred       float64 `json:"debtIncurred"`
	RemainingBalance   float64 `json:"remainingBalance"`
	TotalUnpaidBalance float64 `json:"totalUnpaidBalance"`
}

// Return settles an active rental. The volt must report a docked sensor state
// and an active rent transaction must exist for (user, volt). The penalty is
// computed from the overrun past the grace period and settled debt-aware: a
// return never fails for inability to pay, it converts the shortfall into
// tracked debt so the device goes back into circulation.
func (e *Engine) Return(ctx context.Context, userUID, voltID string) (*ReturnResult, error) {
	if voltID == "" {
		return nil, fault.Validation("missing volt id")
	}

	policy := e.policy()
	endTime := e.now()

	var result ReturnResult
	errAtomic := e.store.Atomic(ctx, func(tx *gorm.DB) error {
		var volt models.Volt
		if errVolt := ledger.Locked(tx).Where("id = ?", voltID).First(&volt).Error; errVolt != nil {
			if errors.Is(errVolt, gorm.ErrRecordNotFound) {
				return fault.NotFound("volt", voltID)
			}
			return errVolt
		}
		if volt.SensorState != models.SensorCharging {
			return ErrVoltNotDocked
		}

		// The active rent row is locked so concurrent returns of the same
		// rental serialize here. The loser re-evaluates the predicate against
		// the committed row, sees status completed and fails NoActiveRental
		// instead of settling the penalty a second time.
		var txn models.UserTransaction
		if errTxn := ledger.Locked(tx).
			Where("user_uid = ? AND volt_id = ? AND type = ? AND status = ?",
				userUID, voltID, models.TxnRent, models.TxnActive).
			First(&txn).Error; errTxn != nil {
			if errors.Is(errTxn, gorm.ErrRecordNotFound) {
				return ErrNoActiveRental
			}
			return errTxn
		}
		if txn.StartTime == nil {
			return fault.Server(errors.New("active rent transaction missing start time"))
		}

		usedMinutes := ceilMinutes(endTime.Sub(*txn.StartTime))
		allowedMinutes := txn.AllowedMinutes
		overdueMinutes := usedMinutes - allowedMinutes
		if overdueMinutes <= policy.GraceMinutes {
			overdueMinutes = 0
		}
		penaltyFee := float64(overdueMinutes) * policy.PenaltyPerMinute

		wallet, errWallet := ledger.WalletForUpdate(tx, userUID)
		if errWallet != nil {
			return errWallet
		}

		availableBalance := wallet.CurrentBalance
		if availableBalance < 0 {
			availableBalance = 0
		}
		amountPaid := penaltyFee
		debtIncurred := 0.0
		if availableBalance < penaltyFee {
			amountPaid = availableBalance
			debtIncurred = penaltyFee - availableBalance
		}
		newBalance := wallet.CurrentBalance - amountPaid
		newDebt := wallet.UnpaidDebt + debtIncurred

		if errWalletUpdate := tx.Model(&models.Wallet{}).
			Where("user_uid = ?", userUID).
			Updates(map[string]any{
				"current_balance": newBalance,
				"unpaid_debt":     newDebt,
			}).Error; errWalletUpdate != nil {
			return errWalletUpdate
		}

		if errTxnUpdate := ledger.UpdateTransaction(tx, txn.ID, map[string]any{
			"type":            models.TxnReturn,
			"status":          models.TxnCompleted,
			"end_time":        endTime,
			"used_minutes":    usedMinutes,
			"overdue_minutes": overdueMinutes,
			"penalty_fee":     penaltyFee,
			"amount_paid":     amountPaid,
			"debt_incurred":   debtIncurred,
			"completed_at":    endTime,
		}); errTxnUpdate != nil {
			return errTxnUpdate
		}

		if errVoltReset := tx.Model(&models.Volt{}).
			Where("id = ?", voltID).
			Updates(map[string]any{
				"status":           models.VoltAvailable,
				"student_uid":      nil,
				"student_id":       nil,
				"start_time":       nil,
				"duration_minutes": nil,
				"reserved_at":      nil,
			}).Error; errVoltReset != nil {
			return errVoltReset
		}

		var user models.User
		if errUser := ledger.Locked(tx).Where("uid = ?", userUID).First(&user).Error; errUser == nil {
			if errHeld := tx.Model(&models.User{}).
				Where("uid = ?", userUID).
				Update("current_volts", datatypes.JSONSlice[string](removeVolt(user.CurrentVolts, voltID))).Error; errHeld != nil {
				return errHeld
			}
		} else if !errors.Is(errUser, gorm.ErrRecordNotFound) {
			return errUser
		}

		result = ReturnResult{
			TransactionID:      txn.ID,
			UsedMinutes:        usedMinutes,
			AllowedMinutes:     allowedMinutes,
			OverdueMinutes:     overdueMinutes,
			PenaltyFee:         penaltyFee,
			AmountPaid:         amountPaid,
			DebtIncurred:       debtIncurred,
			RemainingBalance:   newBalance,
			TotalUnpaidBalance: newDebt,
		}
		return nil
	})
	if errAtomic != nil {
		return nil, errAtomic
	}

	log.WithFields(log.Fields{
		"user":    userUID,
		"volt":    voltID,
		"used":    result.UsedMinutes,
		"overdue": result.OverdueMinutes,
		"penalty": result.PenaltyFee,
		"debt":    result.DebtIncurred,
	}).Info("return settled")
	return &result, nil
}

// ceilMinutes converts an elapsed duration to whole minutes, rounding up.
func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	minutes := int(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// appendVolt adds an id to a held-device set without duplicating it.
func appendVolt(held []string, voltID string) []string {
	for _, id := range held {
		if id == voltID {
			return held
		}
	}
	return append(held, voltID)
}

// removeVolt drops an id from a held-device set.
func removeVolt(held []string, voltID string) []string {
	out := make([]string, 0, len(held))
	for _, id := range held {
		if id != voltID {
			out = append(out, id)
		}
	}
	return out
}
