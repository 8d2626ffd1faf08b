package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

func setupUsersDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:users_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.User{}, &models.Wallet{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestEnsureUserProvisionsUserAndZeroWallet(t *testing.T) {
	db := setupUsersDB(t)
	svc := NewService(ledger.NewStore(db))

	if err := svc.EnsureUser(context.Background(), "u1", "u1@campus.test"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	var user models.User
	if errFind := db.Where("uid = ?", "u1").First(&user).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if user.Role != models.RoleUser || user.Email != "u1@campus.test" {
		t.Fatalf("unexpected user: %+v", user)
	}
	var wallet models.Wallet
	if errFind := db.Where("user_uid = ?", "u1").First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.CurrentBalance != 0 || wallet.UnpaidDebt != 0 {
		t.Fatalf("expected zero wallet, got %+v", wallet)
	}

	// Second login is a no-op.
	if err := svc.EnsureUser(context.Background(), "u1", "u1@campus.test"); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestUpdateProfileOnlyWhitelistedFields(t *testing.T) {
	db := setupUsersDB(t)
	svc := NewService(ledger.NewStore(db))
	if err := svc.EnsureUser(context.Background(), "u1", "u1@campus.test"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	err := svc.UpdateProfile(context.Background(), "u1", map[string]string{
		"firstName": "Ana",
		"studentId": "2021-0001",
		"role":      "admin",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var user models.User
	if errFind := db.Where("uid = ?", "u1").First(&user).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if user.FirstName != "Ana" || user.StudentID != "2021-0001" {
		t.Fatalf("expected updated fields, got %+v", user)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role must not be writable, got %q", user.Role)
	}

	if errEmpty := svc.UpdateProfile(context.Background(), "u1", map[string]string{"role": "admin"}); fault.KindOf(errEmpty) != fault.KindValidation {
		t.Fatalf("expected validation fault, got %v", errEmpty)
	}
}

func TestGetProfileMergesWallet(t *testing.T) {
	db := setupUsersDB(t)
	svc := NewService(ledger.NewStore(db))
	if err := svc.EnsureUser(context.Background(), "u1", "u1@campus.test"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if errSet := db.Model(&models.Wallet{}).Where("user_uid = ?", "u1").
		Updates(map[string]any{"current_balance": 80, "unpaid_debt": 15}).Error; errSet != nil {
		t.Fatalf("set wallet: %v", errSet)
	}

	profile, err := svc.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.CurrentBalance != 80 || profile.UnpaidDebt != 15 {
		t.Fatalf("unexpected profile balances: %+v", profile)
	}

	if _, errMissing := svc.GetProfile(context.Background(), "nope"); fault.KindOf(errMissing) != fault.KindNotFound {
		t.Fatalf("expected not-found, got %v", errMissing)
	}
}
