package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// TransactionHandler serves the user's transaction history.
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// List returns the user's transactions, newest first. Records written before
// the type column existed get their type inferred from shape.
func (h *TransactionHandler) List(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if errLimit != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	var txns []models.UserTransaction
	if errList := h.db.WithContext(c.Request.Context()).
		Where("user_uid = ?", uid).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	for i := range txns {
		if txns[i].Type == "" {
			txns[i].Type = txns[i].InferType()
		}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}
