package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefreshDBConfigSnapshot reloads all settings from the database and updates the in-memory snapshot.
//
// This is required at process startup; otherwise DBConfigValue() will return empty values until
// an admin updates settings via the API (which triggers refresh).
func RefreshDBConfigSnapshot(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []models.Setting
	if errFind := db.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	maxUpdatedAt := time.Time{}
	maxUpdatedKey := ""
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		values[key] = json.RawMessage(row.Value)
		rowUpdatedAt := row.UpdatedAt.UTC()
		if rowUpdatedAt.After(maxUpdatedAt) || (rowUpdatedAt.Equal(maxUpdatedAt) && key > maxUpdatedKey) {
			maxUpdatedAt = rowUpdatedAt
			maxUpdatedKey = key
		}
	}

	StoreDBConfig(maxUpdatedAt, values)
	return nil
}

// SeedDefaults inserts missing policy settings with their defaults, leaving
// existing values untouched, then refreshes the snapshot.
func SeedDefaults(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}

	defaults := map[string]string{
		MinBalanceShortKey:     strconv.FormatFloat(DefaultMinBalanceShort, 'f', -1, 64),
		MinBalanceLongKey:      strconv.FormatFloat(DefaultMinBalanceLong, 'f', -1, 64),
		ShortPlanMaxMinutesKey: strconv.Itoa(DefaultShortPlanMaxMinutes),
		PenaltyPerMinuteKey:    strconv.FormatFloat(DefaultPenaltyPerMinute, 'f', -1, 64),
		GraceMinutesKey:        strconv.Itoa(DefaultGraceMinutes),
	}

	for key, value := range defaults {
		row := models.Setting{Key: key, Value: []byte(value)}
		if errCreate := db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&row).Error; errCreate != nil {
			return errCreate
		}
	}

	return RefreshDBConfigSnapshot(ctx, db)
}

// Upsert writes one setting and refreshes the snapshot.
func Upsert(ctx context.Context, db *gorm.DB, key string, value json.RawMessage) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: empty key")
	}

	row := models.Setting{Key: key, Value: []byte(value)}
	if errUpsert := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error; errUpsert != nil {
		return errUpsert
	}

	return RefreshDBConfigSnapshot(ctx, db)
}
