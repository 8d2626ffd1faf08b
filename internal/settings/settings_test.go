package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

func setupSettingsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:settings_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Setting{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestSeedDefaultsPopulatesSnapshot(t *testing.T) {
	db := setupSettingsDB(t)

	if errSeed := SeedDefaults(context.Background(), db); errSeed != nil {
		t.Fatalf("seed: %v", errSeed)
	}

	if got := Float(MinBalanceShortKey, 0); got != DefaultMinBalanceShort {
		t.Fatalf("expected %v, got %v", DefaultMinBalanceShort, got)
	}
	if got := Int(GraceMinutesKey, 0); got != DefaultGraceMinutes {
		t.Fatalf("expected %d, got %d", DefaultGraceMinutes, got)
	}
}

func TestSeedDefaultsKeepsExistingValues(t *testing.T) {
	db := setupSettingsDB(t)

	if errUpsert := Upsert(context.Background(), db, PenaltyPerMinuteKey, json.RawMessage("7.5")); errUpsert != nil {
		t.Fatalf("upsert: %v", errUpsert)
	}
	if errSeed := SeedDefaults(context.Background(), db); errSeed != nil {
		t.Fatalf("seed: %v", errSeed)
	}

	if got := Float(PenaltyPerMinuteKey, 0); got != 7.5 {
		t.Fatalf("seed overwrote operator value: got %v", got)
	}
}

func TestUpsertRefreshesSnapshot(t *testing.T) {
	db := setupSettingsDB(t)
	if errSeed := SeedDefaults(context.Background(), db); errSeed != nil {
		t.Fatalf("seed: %v", errSeed)
	}

	if errUpsert := Upsert(context.Background(), db, MinBalanceLongKey, json.RawMessage("120")); errUpsert != nil {
		t.Fatalf("upsert: %v", errUpsert)
	}
	if got := Float(MinBalanceLongKey, 0); got != 120 {
		t.Fatalf("expected 120, got %v", got)
	}

	if got := Float("MISSING_KEY", 42); got != 42 {
		t.Fatalf("expected fallback 42, got %v", got)
	}
}
