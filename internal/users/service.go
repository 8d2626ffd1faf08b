// Package users handles onboarding and profile access for accounts provisioned
// by the external identity provider.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// Service manages user and wallet provisioning.
type Service struct {
	store *ledger.Store
}

// NewService constructs a Service.
func NewService(store *ledger.Store) *Service { return &Service{store: store} }

// EnsureUser provisions the user row and a zero-balance wallet on first login.
// Both rows land in one commit group; an existing user is a no-op.
func (s *Service) EnsureUser(ctx context.Context, uid, email string) error {
	if uid == "" {
		return fault.Validation("missing user id")
	}

	var existing models.User
	errFind := s.store.DB().WithContext(ctx).Where("uid = ?", uid).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fault.Server(errFind)
	}

	return s.store.Atomic(ctx, func(tx *gorm.DB) error {
		user := models.User{
			UID:          uid,
			Email:        email,
			Role:         models.RoleUser,
			CurrentVolts: datatypes.JSONSlice[string]{},
		}
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			return errCreate
		}
		return tx.Create(&models.Wallet{UserUID: uid}).Error
	})
}

// Profile is a user profile with wallet state attached.
type Profile struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	StudentID      string    `json:"studentId"`
	CurrentVolts   []string  `json:"currentVolts"`
	CurrentBalance float64   `json:"currentBalance"`
	UnpaidDebt     float64   `json:"unpaidDebt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GetProfile returns the profile and wallet for a user.
func (s *Service) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	var user models.User
	if errFind := s.store.DB().WithContext(ctx).Where("uid = ?", uid).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("user", uid)
		}
		return nil, fault.Server(errFind)
	}

	var wallet models.Wallet
	if errWallet := s.store.DB().WithContext(ctx).Where("user_uid = ?", uid).First(&wallet).Error; errWallet != nil {
		if !errors.Is(errWallet, gorm.ErrRecordNotFound) {
			return nil, fault.Server(errWallet)
		}
	}

	return &Profile{
		UID:            user.UID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		StudentID:      user.StudentID,
		CurrentVolts:   user.CurrentVolts,
		CurrentBalance: wallet.CurrentBalance,
		UnpaidDebt:     wallet.UnpaidDebt,
		CreatedAt:      user.CreatedAt,
	}, nil
}

// profileFields are the mutable profile columns.
var profileFields = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"studentId": "student_id",
}

// UpdateProfile applies whitelisted profile fields.
func (s *Service) UpdateProfile(ctx context.Context, uid string, updates map[string]string) error {
	filtered := make(map[string]any, len(updates))
	for key, value := range updates {
		column, ok := profileFields[key]
		if !ok {
			continue
		}
		filtered[column] = strings.TrimSpace(value)
	}
	if len(filtered) == 0 {
		return fault.Validation("no valid fields to update")
	}

	res := s.store.DB().WithContext(ctx).Model(&models.User{}).
		Where("uid = ?", uid).
		Updates(filtered)
	if res.Error != nil {
		return fault.Server(res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("user", uid)
	}
	return nil
}
