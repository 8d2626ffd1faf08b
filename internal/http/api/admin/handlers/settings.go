package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/settings"
)

// SettingsHandler handles pricing policy configuration.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// List returns all policy settings.
func (h *SettingsHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errList := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// knownSettingKeys are the policy keys the console may write.
var knownSettingKeys = map[string]bool{
	settings.MinBalanceShortKey:     true,
	settings.MinBalanceLongKey:      true,
	settings.ShortPlanMaxMinutesKey: true,
	settings.PenaltyPerMinuteKey:    true,
	settings.GraceMinutesKey:        true,
}

// Update upserts policy settings and refreshes the in-process snapshot.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body map[string]json.RawMessage
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings to update"})
		return
	}

	for key, value := range body {
		if !knownSettingKeys[key] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting key", "key": key})
			return
		}
		if errUpsert := settings.Upsert(c.Request.Context(), h.db, key, value); errUpsert != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting", "key": key})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated"})
}
