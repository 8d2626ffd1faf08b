// Package wallet implements top-up settlement: manual receipt approvals and
// idempotent payment-provider credits. Both paths converge on one contract,
// crediting a wallet by a fixed amount exactly once with recorded provenance.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// Settlement errors.
var (
	// ErrAlreadyApproved marks an approve on a transaction that already
	// succeeded. The balance is not credited again.
	ErrAlreadyApproved = fault.New(fault.KindPrecondition, "already_approved",
		"transaction already approved")
	// ErrInvalidState marks a deny on a transaction that is not pending.
	ErrInvalidState = fault.New(fault.KindPrecondition, "invalid_state",
		"only pending transactions can be denied")
)

// Service settles top-ups against the ledger store.
type Service struct {
	store *ledger.Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store *ledger.Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateManual records a pending manual top-up awaiting admin approval. The
// receipt must already be stored; its URL is kept for review.
func (s *Service) CreateManual(ctx context.Context, userUID string, amount float64, receiptURL, receiptPath string) (string, error) {
	if userUID == "" {
		return "", fault.Validation("missing user")
	}
	if amount <= 0 {
		return "", fault.Validation("invalid amount")
	}

	now := s.now()
	txnID := fmt.Sprintf("gcash_%s_%d", userUID, now.UnixMilli())
	rec := models.TransactionRecord{
		ID:          txnID,
		UserUID:     userUID,
		Type:        models.TxnTopUp,
		Status:      models.TxnPending,
		Method:      models.MethodManualReceipt,
		Amount:      amount,
		ReceiptURL:  receiptURL,
		ReceiptPath: receiptPath,
	}

	errAtomic := s.store.Atomic(ctx, func(tx *gorm.DB) error {
		return ledger.CreateTransaction(tx, rec)
	})
	if errAtomic != nil {
		return "", errAtomic
	}
	return txnID, nil
}

// Approve credits a pending top-up. A transaction that already succeeded
// rejects with ErrAlreadyApproved and the balance is untouched; the wallet
// credit and the status flip in both indices land in one commit group.
func (s *Service) Approve(ctx context.Context, txnID string) error {
	if txnID == "" {
		return fault.Validation("missing transaction id")
	}
	now := s.now()

	errAtomic := s.store.Atomic(ctx, func(tx *gorm.DB) error {
		var txn models.Transaction
		if errFind := ledger.Locked(tx).Where("id = ?", txnID).First(&txn).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fault.NotFound("transaction", txnID)
			}
			return errFind
		}
		if txn.Status == models.TxnSucceeded {
			return ErrAlreadyApproved
		}

		wallet, errWallet := ledger.WalletForUpdate(tx, txn.UserUID)
		if errWallet != nil {
			return errWallet
		}
		if errCredit := tx.Model(&models.Wallet{}).
			Where("user_uid = ?", txn.UserUID).
			Update("current_balance", wallet.CurrentBalance+txn.Amount).Error; errCredit != nil {
			return errCredit
		}

		return ledger.UpdateTransaction(tx, txnID, map[string]any{
			"status":       models.TxnSucceeded,
			"completed_at": now,
		})
	})
	if errAtomic != nil {
		return errAtomic
	}

	log.WithField("txn", txnID).Info("top-up approved")
	return nil
}

// Deny rejects a pending top-up without touching the balance. Any state other
// than pending rejects with ErrInvalidState.
func (s *Service) Deny(ctx context.Context, txnID string) error {
	if txnID == "" {
		return fault.Validation("missing transaction id")
	}
	now := s.now()

	return s.store.Atomic(ctx, func(tx *gorm.DB) error {
		var txn models.Transaction
		if errFind := ledger.Locked(tx).Where("id = ?", txnID).First(&txn).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fault.NotFound("transaction", txnID)
			}
			return errFind
		}
		if txn.Status != models.TxnPending {
			return ErrInvalidState
		}

		return ledger.UpdateTransaction(tx, txnID, map[string]any{
			"status":       models.TxnDenied,
			"completed_at": now,
		})
	})
}

// Credit applies an automated payment-provider settlement. The provider
// transaction id doubles as the ledger id, so duplicate webhook deliveries
// collide on create-if-absent semantics instead of double-crediting.
func (s *Service) Credit(ctx context.Context, providerTxnID, userUID string, amount float64) error {
	if providerTxnID == "" || userUID == "" {
		return fault.Validation("missing provider transaction id or user")
	}
	if amount <= 0 {
		return fault.Validation("invalid amount")
	}
	now := s.now()

	errAtomic := s.store.Atomic(ctx, func(tx *gorm.DB) error {
		var existing models.Transaction
		errFind := ledger.Locked(tx).Where("id = ?", providerTxnID).First(&existing).Error
		if errFind == nil {
			// Settled or still pending from an earlier delivery. Only an
			// unapplied row gets credited.
			if existing.Status == models.TxnSucceeded {
				return nil
			}
			wallet, errWallet := ledger.WalletForUpdate(tx, existing.UserUID)
			if errWallet != nil {
				return errWallet
			}
			if errCredit := tx.Model(&models.Wallet{}).
				Where("user_uid = ?", existing.UserUID).
				Update("current_balance", wallet.CurrentBalance+existing.Amount).Error; errCredit != nil {
				return errCredit
			}
			return ledger.UpdateTransaction(tx, providerTxnID, map[string]any{
				"status":       models.TxnSucceeded,
				"completed_at": now,
			})
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return errFind
		}

		completed := now
		rec := models.TransactionRecord{
			ID:          providerTxnID,
			UserUID:     userUID,
			Type:        models.TxnTopUp,
			Status:      models.TxnSucceeded,
			Method:      models.MethodProvider,
			Amount:      amount,
			CompletedAt: &completed,
		}
		if errCreate := ledger.CreateTransaction(tx, rec); errCreate != nil {
			return errCreate
		}

		wallet, errWallet := ledger.WalletForUpdate(tx, userUID)
		if errWallet != nil {
			return errWallet
		}
		return tx.Model(&models.Wallet{}).
			Where("user_uid = ?", userUID).
			Update("current_balance", wallet.CurrentBalance+amount).Error
	})
	if errAtomic != nil {
		return errAtomic
	}

	log.WithFields(log.Fields{"txn": providerTxnID, "user": userUID}).Info("provider top-up credited")
	return nil
}
