package rental

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

func testPolicy() Policy {
	return Policy{
		MinBalanceShort:     55,
		MinBalanceLong:      100,
		ShortPlanMaxMinutes: 60,
		PenaltyPerMinute:    5,
		GraceMinutes:        5,
	}
}

func setupEngineDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:engine_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.Volt{},
		&models.Transaction{}, &models.UserTransaction{},
	); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func seedUserWallet(t *testing.T, db *gorm.DB, uid string, balance float64) {
	t.Helper()
	user := models.User{
		UID:          uid,
		Email:        uid + "@campus.test",
		StudentID:    "2021-" + uid,
		Role:         models.RoleUser,
		CurrentVolts: datatypes.JSONSlice[string]{},
	}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	if errCreate := db.Create(&models.Wallet{UserUID: uid, CurrentBalance: balance}).Error; errCreate != nil {
		t.Fatalf("create wallet: %v", errCreate)
	}
}

func seedVolt(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	volt := models.Volt{ID: id, Status: models.VoltAvailable, SensorState: models.SensorCharging}
	if errCreate := db.Create(&volt).Error; errCreate != nil {
		t.Fatalf("create volt: %v", errCreate)
	}
}

func newTestEngine(db *gorm.DB, now time.Time) (*Engine, *time.Time) {
	clock := now
	engine := NewEngine(ledger.NewStore(db)).
		WithPolicy(testPolicy).
		WithClock(func() time.Time { return clock })
	return engine, &clock
}

func TestRentInsufficientFundsLeavesNoTrace(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 30)
	seedVolt(t, db, "1")
	engine, _ := newTestEngine(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "1", Fee: 50, DurationMinutes: 60,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	var wallet models.Wallet
	if errFind := db.Where("user_uid = ?", "u1").First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.CurrentBalance != 30 {
		t.Fatalf("expected balance 30, got %v", wallet.CurrentBalance)
	}
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no transactions, got %d", count)
	}
	var volt models.Volt
	if errFind := db.Where("id = ?", "1").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if volt.Status != models.VoltAvailable {
		t.Fatalf("expected volt available, got %s", volt.Status)
	}
}

func TestRentMinimumBalanceTiers(t *testing.T) {
	cases := []struct {
		name     string
		balance  float64
		fee      float64
		duration int
		wantErr  error
	}{
		{"short plan below minimum", 50, 40, 60, ErrInsufficientMinimumBalance},
		{"short plan at minimum", 55, 40, 60, nil},
		{"long plan below minimum", 80, 40, 61, ErrInsufficientMinimumBalance},
		{"long plan at minimum", 100, 40, 61, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupEngineDB(t)
			seedUserWallet(t, db, "u1", tc.balance)
			seedVolt(t, db, "1")
			engine, _ := newTestEngine(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

			result, err := engine.Rent(context.Background(), RentParams{
				UserUID: "u1", VoltID: "1", Fee: tc.fee, DurationMinutes: tc.duration,
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("rent: %v", err)
			}
			if result.RemainingBalance != tc.balance-tc.fee {
				t.Fatalf("expected remaining %v, got %v", tc.balance-tc.fee, result.RemainingBalance)
			}
		})
	}
}

func TestRentWritesBothIndicesAndMarksVolt(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, _ := newTestEngine(db, start)

	result, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 50, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	if result.RemainingBalance != 50 {
		t.Fatalf("expected remaining 50, got %v", result.RemainingBalance)
	}

	var global models.Transaction
	if errFind := db.Where("id = ?", result.TransactionID).First(&global).Error; errFind != nil {
		t.Fatalf("load global txn: %v", errFind)
	}
	var mirror models.UserTransaction
	if errFind := db.Where("id = ?", result.TransactionID).First(&mirror).Error; errFind != nil {
		t.Fatalf("load user txn: %v", errFind)
	}
	for _, rec := range []models.TransactionRecord{global.TransactionRecord, mirror.TransactionRecord} {
		if rec.Type != models.TxnRent || rec.Status != models.TxnActive {
			t.Fatalf("expected active rent, got %s/%s", rec.Type, rec.Status)
		}
		if rec.Fee != 50 || rec.AllowedMinutes != 60 {
			t.Fatalf("unexpected record: fee=%v allowed=%d", rec.Fee, rec.AllowedMinutes)
		}
	}

	var volt models.Volt
	if errFind := db.Where("id = ?", "7").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if !volt.Rented() {
		t.Fatalf("expected rented volt with full occupant fields, got %+v", volt)
	}

	var user models.User
	if errFind := db.Where("uid = ?", "u1").First(&user).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if len(user.CurrentVolts) != 1 || user.CurrentVolts[0] != "7" {
		t.Fatalf("expected held volt 7, got %v", user.CurrentVolts)
	}
}

func TestRentRejectsUnavailableVolt(t *testing.T) {
	otherUID := "u2"
	cases := []struct {
		name    string
		status  string
		holder  *string
		wantErr error
	}{
		{"already rented", models.VoltRented, &otherUID, ErrVoltUnavailable},
		{"in maintenance", models.VoltMaintenance, nil, ErrVoltUnavailable},
		{"reserved by another user", models.VoltReserved, &otherUID, ErrVoltUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupEngineDB(t)
			seedUserWallet(t, db, "u1", 100)
			seedVolt(t, db, "7")
			if errSet := db.Model(&models.Volt{}).Where("id = ?", "7").
				Updates(map[string]any{"status": tc.status, "student_uid": tc.holder}).Error; errSet != nil {
				t.Fatalf("set volt state: %v", errSet)
			}
			engine, _ := newTestEngine(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

			_, err := engine.Rent(context.Background(), RentParams{
				UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			var wallet models.Wallet
			if errFind := db.Where("user_uid = ?", "u1").First(&wallet).Error; errFind != nil {
				t.Fatalf("load wallet: %v", errFind)
			}
			if wallet.CurrentBalance != 100 {
				t.Fatalf("expected untouched balance 100, got %v", wallet.CurrentBalance)
			}
		})
	}
}

func TestRentHonorsOwnReservation(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	engine, _ := newTestEngine(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if err := engine.Reserve(context.Background(), "7", "u1", "2021-u1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	result, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("rent after own reservation: %v", err)
	}
	if result.RemainingBalance != 60 {
		t.Fatalf("expected remaining 60, got %v", result.RemainingBalance)
	}
}

func TestReturnOnTimeChargesNothing(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, clock := newTestEngine(db, start)

	rent, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 50, DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("rent: %v", err)
	}

	*clock = start.Add(45 * time.Minute)
	result, err := engine.Return(context.Background(), "u1", "7")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if result.TransactionID != rent.TransactionID {
		t.Fatalf("expected settlement on rent txn %s, got %s", rent.TransactionID, result.TransactionID)
	}
	if result.UsedMinutes != 45 || result.OverdueMinutes != 0 || result.PenaltyFee != 0 {
		t.Fatalf("unexpected settlement: %+v", result)
	}
	if result.RemainingBalance != 50 || result.TotalUnpaidBalance != 0 {
		t.Fatalf("unexpected balances: %+v", result)
	}

	var volt models.Volt
	if errFind := db.Where("id = ?", "7").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if volt.Status != models.VoltAvailable || volt.StudentUID != nil || volt.StartTime != nil {
		t.Fatalf("expected cleared available volt, got %+v", volt)
	}

	var user models.User
	if errFind := db.Where("uid = ?", "u1").First(&user).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if len(user.CurrentVolts) != 0 {
		t.Fatalf("expected no held volts, got %v", user.CurrentVolts)
	}

	var global models.Transaction
	if errFind := db.Where("id = ?", rent.TransactionID).First(&global).Error; errFind != nil {
		t.Fatalf("load global txn: %v", errFind)
	}
	var mirror models.UserTransaction
	if errFind := db.Where("id = ?", rent.TransactionID).First(&mirror).Error; errFind != nil {
		t.Fatalf("load user txn: %v", errFind)
	}
	for _, rec := range []models.TransactionRecord{global.TransactionRecord, mirror.TransactionRecord} {
		if rec.Type != models.TxnReturn || rec.Status != models.TxnCompleted {
			t.Fatalf("expected completed return, got %s/%s", rec.Type, rec.Status)
		}
		if rec.EndTime == nil || rec.CompletedAt == nil {
			t.Fatalf("expected settlement timestamps, got %+v", rec)
		}
	}
}

func TestReturnGraceBoundary(t *testing.T) {
	cases := []struct {
		name        string
		elapsed     time.Duration
		wantOverdue int
		wantPenalty float64
	}{
		{"exactly at grace", 65 * time.Minute, 0, 0},
		{"one past grace charges whole overrun", 66 * time.Minute, 6, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupEngineDB(t)
			seedUserWallet(t, db, "u1", 100)
			seedVolt(t, db, "7")
			start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			engine, clock := newTestEngine(db, start)

			if _, err := engine.Rent(context.Background(), RentParams{
				UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
			}); err != nil {
				t.Fatalf("rent: %v", err)
			}

			*clock = start.Add(tc.elapsed)
			result, err := engine.Return(context.Background(), "u1", "7")
			if err != nil {
				t.Fatalf("return: %v", err)
			}
			if result.OverdueMinutes != tc.wantOverdue {
				t.Fatalf("expected overdue %d, got %d", tc.wantOverdue, result.OverdueMinutes)
			}
			if result.PenaltyFee != tc.wantPenalty {
				t.Fatalf("expected penalty %v, got %v", tc.wantPenalty, result.PenaltyFee)
			}
		})
	}
}

func TestReturnPartialMinuteRoundsUp(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, clock := newTestEngine(db, start)

	if _, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("rent: %v", err)
	}

	*clock = start.Add(44*time.Minute + 1*time.Second)
	result, err := engine.Return(context.Background(), "u1", "7")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if result.UsedMinutes != 45 {
		t.Fatalf("expected 45 used minutes, got %d", result.UsedMinutes)
	}
}

func TestReturnConvertsShortfallToDebt(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, clock := newTestEngine(db, start)

	if _, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 90, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("rent: %v", err)
	}

	// Balance is 10 after the fee; 6 overdue minutes cost 30.
	*clock = start.Add(66 * time.Minute)
	result, err := engine.Return(context.Background(), "u1", "7")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if result.PenaltyFee != 30 || result.AmountPaid != 10 || result.DebtIncurred != 20 {
		t.Fatalf("unexpected debt split: %+v", result)
	}
	if result.RemainingBalance != 0 || result.TotalUnpaidBalance != 20 {
		t.Fatalf("unexpected balances: %+v", result)
	}

	var wallet models.Wallet
	if errFind := db.Where("user_uid = ?", "u1").First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.CurrentBalance != 0 || wallet.UnpaidDebt != 20 {
		t.Fatalf("expected wallet 0/20, got %v/%v", wallet.CurrentBalance, wallet.UnpaidDebt)
	}

	var volt models.Volt
	if errFind := db.Where("id = ?", "7").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if volt.Status != models.VoltAvailable {
		t.Fatalf("expected volt back in circulation, got %s", volt.Status)
	}
}

func TestReturnRequiresDockedSensor(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, clock := newTestEngine(db, start)

	if _, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("rent: %v", err)
	}
	if errClear := db.Model(&models.Volt{}).Where("id = ?", "7").
		Update("sensor_state", "").Error; errClear != nil {
		t.Fatalf("clear sensor: %v", errClear)
	}

	*clock = start.Add(30 * time.Minute)
	if _, err := engine.Return(context.Background(), "u1", "7"); !errors.Is(err, ErrVoltNotDocked) {
		t.Fatalf("expected ErrVoltNotDocked, got %v", err)
	}
}

func TestReturnTwiceRejectsSecondAttempt(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "7")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	engine, clock := newTestEngine(db, start)

	if _, err := engine.Rent(context.Background(), RentParams{
		UserUID: "u1", VoltID: "7", Fee: 40, DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("rent: %v", err)
	}

	// A penalty-bearing overrun makes a double settlement observable in the
	// wallet if the second attempt ever gets past the active-rental check.
	*clock = start.Add(66 * time.Minute)
	first, err := engine.Return(context.Background(), "u1", "7")
	if err != nil {
		t.Fatalf("first return: %v", err)
	}
	if first.PenaltyFee != 30 {
		t.Fatalf("expected penalty 30, got %v", first.PenaltyFee)
	}
	if _, err := engine.Return(context.Background(), "u1", "7"); !errors.Is(err, ErrNoActiveRental) {
		t.Fatalf("expected ErrNoActiveRental, got %v", err)
	}

	var wallet models.Wallet
	if errFind := db.Where("user_uid = ?", "u1").First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.CurrentBalance != first.RemainingBalance || wallet.UnpaidDebt != first.TotalUnpaidBalance {
		t.Fatalf("second attempt moved the wallet: %v/%v", wallet.CurrentBalance, wallet.UnpaidDebt)
	}
}

func TestReserveAndRelease(t *testing.T) {
	db := setupEngineDB(t)
	seedUserWallet(t, db, "u1", 100)
	seedVolt(t, db, "3")
	engine, _ := newTestEngine(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if err := engine.Reserve(context.Background(), "3", "u1", "2021-u1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	var volt models.Volt
	if errFind := db.Where("id = ?", "3").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if volt.Status != models.VoltReserved || volt.ReservedAt == nil {
		t.Fatalf("expected reserved volt, got %+v", volt)
	}

	if err := engine.Release(context.Background(), "3"); err != nil {
		t.Fatalf("release: %v", err)
	}
	volt = models.Volt{}
	if errFind := db.Where("id = ?", "3").First(&volt).Error; errFind != nil {
		t.Fatalf("load volt: %v", errFind)
	}
	if volt.Status != models.VoltAvailable || volt.ReservedAt != nil {
		t.Fatalf("expected available volt, got %+v", volt)
	}

	if err := engine.Reserve(context.Background(), "missing", "u1", "2021-u1"); fault.KindOf(err) != fault.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
