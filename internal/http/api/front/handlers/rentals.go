package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/rental"
)

// RentalHandler handles rent and return confirmations.
type RentalHandler struct {
	engine *rental.Engine
}

// NewRentalHandler constructs a RentalHandler.
func NewRentalHandler(engine *rental.Engine) *RentalHandler {
	return &RentalHandler{engine: engine}
}

// rentRequest defines the request body for rent confirmation.
type rentRequest struct {
	VoltID          string  `json:"voltId"`
	Fee             float64 `json:"fee"`
	DurationMinutes int     `json:"durationMinutes"`
}

// Rent confirms a rental: debits the plan fee and hands the volt out.
func (h *RentalHandler) Rent(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body rentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, err := h.engine.Rent(c.Request.Context(), rental.RentParams{
		UserUID:         uid,
		VoltID:          body.VoltID,
		Fee:             body.Fee,
		DurationMinutes: body.DurationMinutes,
	})
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// returnRequest defines the request body for return confirmation.
type returnRequest struct {
	VoltID string `json:"voltId"`
}

// Return settles an active rental and reports the penalty breakdown.
func (h *RentalHandler) Return(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body returnRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, err := h.engine.Return(c.Request.Context(), uid, body.VoltID)
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
