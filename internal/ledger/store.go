// Package ledger provides the atomic commit-group primitive every monetary
// mutation runs through. A commit group either lands all of its writes or none,
// and concurrent groups touching the same wallet or volt row serialize via row
// locks (PostgreSQL) or the single-writer transaction model (SQLite).
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbutil "github.com/volt-campus/VoltRentalAPI/internal/db"
	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// maxAttempts bounds transparent retries of a commit group that lost a
// serialization race. Business errors are never retried.
const maxAttempts = 3

// Store wraps a GORM connection with the atomic commit-group contract.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store.
func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// DB exposes the underlying connection for read-only queries.
func (s *Store) DB() *gorm.DB { return s.db }

// Atomic runs fn inside one database transaction. On a serialization or busy
// conflict the whole group is retried up to maxAttempts times; any other error
// rolls back and surfaces unchanged.
func (s *Store) Atomic(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var errTx error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		errTx = s.db.WithContext(ctx).Transaction(fn)
		if errTx == nil {
			return nil
		}
		var fe *fault.Error
		if errors.As(errTx, &fe) {
			return errTx
		}
		if !isConflict(errTx) {
			return errTx
		}
		log.Warnf("ledger: commit group lost race (attempt %d/%d): %v", attempt, maxAttempts, errTx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return fault.Conflict(errTx)
}

// isConflict reports whether err is a retryable commit conflict.
func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// Locked applies a row-level write lock where the dialect supports one.
// SQLite serializes writing transactions on its own and rejects FOR UPDATE.
func Locked(tx *gorm.DB) *gorm.DB {
	if dbutil.IsSQLite(tx) {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// WalletForUpdate loads a user's wallet under a write lock, creating a zero
// wallet when none exists yet.
func WalletForUpdate(tx *gorm.DB, userUID string) (*models.Wallet, error) {
	var wallet models.Wallet
	errFind := Locked(tx).Where("user_uid = ?", userUID).First(&wallet).Error
	if errFind == nil {
		return &wallet, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, errFind
	}
	wallet = models.Wallet{UserUID: userUID}
	if errCreate := tx.Create(&wallet).Error; errCreate != nil {
		return nil, errCreate
	}
	return &wallet, nil
}

// CreateTransaction writes a transaction record to both the global and the
// per-user index with the same id. Must run inside a commit group.
func CreateTransaction(tx *gorm.DB, rec models.TransactionRecord) error {
	if errGlobal := tx.Create(&models.Transaction{TransactionRecord: rec}).Error; errGlobal != nil {
		return errGlobal
	}
	return tx.Create(&models.UserTransaction{TransactionRecord: rec}).Error
}

// UpdateTransaction applies the same status/settlement updates to both indices.
// Must run inside a commit group.
func UpdateTransaction(tx *gorm.DB, id string, updates map[string]any) error {
	if errGlobal := tx.Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates).Error; errGlobal != nil {
		return errGlobal
	}
	return tx.Model(&models.UserTransaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}
