package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/cache"
	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
)

// TopUpHandler handles manual top-up review endpoints.
type TopUpHandler struct {
	db      *gorm.DB
	wallets *wallet.Service
	cache   *cache.Cache
}

// NewTopUpHandler constructs a TopUpHandler.
func NewTopUpHandler(db *gorm.DB, wallets *wallet.Service, c *cache.Cache) *TopUpHandler {
	return &TopUpHandler{db: db, wallets: wallets, cache: c}
}

// ListPending returns manual top-ups awaiting review, oldest first.
func (h *TopUpHandler) ListPending(c *gin.Context) {
	limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if errLimit != nil || limit <= 0 || limit > 500 {
		limit = 100
	}

	var txns []models.Transaction
	if errList := h.db.WithContext(c.Request.Context()).
		Where("type = ? AND status = ? AND method = ?",
			models.TxnTopUp, models.TxnPending, models.MethodManualReceipt).
		Order("created_at ASC").
		Limit(limit).
		Find(&txns).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topUps": txns})
}

// Approve credits a pending top-up to the submitting user's wallet.
func (h *TopUpHandler) Approve(c *gin.Context) {
	txnID := c.Param("id")
	if err := h.wallets.Approve(c.Request.Context(), txnID); err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), dashboardCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "top-up approved", "transactionId": txnID})
}

// Deny rejects a pending top-up without crediting.
func (h *TopUpHandler) Deny(c *gin.Context) {
	txnID := c.Param("id")
	if err := h.wallets.Deny(c.Request.Context(), txnID); err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), dashboardCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "top-up denied", "transactionId": txnID})
}
