package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/rental"
)

// VoltHandler handles device listing and reservation endpoints.
type VoltHandler struct {
	db     *gorm.DB
	engine *rental.Engine
}

// NewVoltHandler constructs a VoltHandler.
func NewVoltHandler(db *gorm.DB, engine *rental.Engine) *VoltHandler {
	return &VoltHandler{db: db, engine: engine}
}

// List returns all volts ordered by numeric slot id. Slot ids are stored as
// strings, so lexicographic ordering would put "10" before "2".
func (h *VoltHandler) List(c *gin.Context) {
	var volts []models.Volt
	if errList := h.db.WithContext(c.Request.Context()).Find(&volts).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	sort.Slice(volts, func(i, j int) bool {
		a, errA := strconv.Atoi(volts[i].ID)
		b, errB := strconv.Atoi(volts[j].ID)
		if errA != nil || errB != nil {
			return volts[i].ID < volts[j].ID
		}
		return a < b
	})

	c.JSON(http.StatusOK, gin.H{"volts": volts})
}

// Reserve holds a volt for the current user ahead of rent confirmation.
func (h *VoltHandler) Reserve(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	voltID := c.Param("id")

	var user models.User
	if errUser := h.db.WithContext(c.Request.Context()).Where("uid = ?", uid).First(&user).Error; errUser != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if err := h.engine.Reserve(c.Request.Context(), voltID, uid, user.StudentID); err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "volt reserved", "voltId": voltID})
}

// Release clears a reservation back to available.
func (h *VoltHandler) Release(c *gin.Context) {
	if uid := getUserUID(c); uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	voltID := c.Param("id")

	if err := h.engine.Release(c.Request.Context(), voltID); err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "volt released", "voltId": voltID})
}
