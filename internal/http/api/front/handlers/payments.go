package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/payment"
)

// PaymentHandler handles payment-provider checkout and webhook endpoints.
type PaymentHandler struct {
	db       *gorm.DB
	payments *payment.Service
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB, payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{db: db, payments: payments}
}

// checkoutRequest defines the request body for provider checkout creation.
type checkoutRequest struct {
	Amount float64 `json:"amount"`
}

// Checkout creates a hosted payment session for an automated top-up.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !h.payments.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider not configured"})
		return
	}

	var body checkoutRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	var user models.User
	if errUser := h.db.WithContext(c.Request.Context()).Where("uid = ?", uid).First(&user).Error; errUser != nil {
		if errors.Is(errUser, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	result, err := h.payments.CreateTopUp(c.Request.Context(), user, body.Amount)
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Notification receives asynchronous settlement callbacks from the payment
// provider. It always acknowledges with 200 once the payload is parseable; the
// provider retries on anything else and settlement is idempotent anyway.
func (h *PaymentHandler) Notification(c *gin.Context) {
	if !h.payments.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider not configured"})
		return
	}

	var payload map[string]any
	if errBind := c.ShouldBindJSON(&payload); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.payments.HandleNotification(c.Request.Context(), payload); err != nil {
		log.WithError(err).Warn("payment notification rejected")
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
