package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// VoltAdminHandler handles fleet management endpoints.
type VoltAdminHandler struct {
	db *gorm.DB
}

// NewVoltAdminHandler constructs a VoltAdminHandler.
func NewVoltAdminHandler(db *gorm.DB) *VoltAdminHandler {
	return &VoltAdminHandler{db: db}
}

// createVoltRequest defines the request body for registering a volt slot.
type createVoltRequest struct {
	ID string `json:"id"`
}

// Create registers a new volt slot in available state.
func (h *VoltAdminHandler) Create(c *gin.Context) {
	var body createVoltRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing volt id"})
		return
	}

	volt := models.Volt{ID: id, Status: models.VoltAvailable}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&volt).Error; errCreate != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "volt already exists"})
		return
	}
	c.JSON(http.StatusCreated, volt)
}

// validStatuses are the admin-settable volt states.
var validStatuses = map[string]bool{
	models.VoltAvailable:   true,
	models.VoltMaintenance: true,
}

// updateVoltRequest defines the request body for volt updates. Pointer fields
// distinguish absent from zero.
type updateVoltRequest struct {
	Status       *string  `json:"status"`
	BatteryLevel *float64 `json:"batteryLevel"`
	SensorState  *string  `json:"sensorState"`
}

// Update applies status and telemetry fields reported for a volt slot. Rented
// and reserved states are owned by the lifecycle engine and cannot be set here.
func (h *VoltAdminHandler) Update(c *gin.Context) {
	voltID := c.Param("id")

	var body updateVoltRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Status != nil {
		if !validStatuses[*body.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["status"] = *body.Status
	}
	if body.BatteryLevel != nil {
		if *body.BatteryLevel < 0 || *body.BatteryLevel > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid battery level"})
			return
		}
		updates["battery_level"] = *body.BatteryLevel
	}
	if body.SensorState != nil {
		updates["sensor_state"] = *body.SensorState
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Volt{}).
		Where("id = ?", voltID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "volt not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "volt updated", "voltId": voltID})
}
