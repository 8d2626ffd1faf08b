package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/db"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// TransactionAdminHandler serves the global transaction index.
type TransactionAdminHandler struct {
	db *gorm.DB
}

// NewTransactionAdminHandler constructs a TransactionAdminHandler.
func NewTransactionAdminHandler(db *gorm.DB) *TransactionAdminHandler {
	return &TransactionAdminHandler{db: db}
}

// List returns transactions across all users, newest first, optionally
// filtered by type, status or user. Records written before the type column
// existed get their type inferred from shape.
func (h *TransactionAdminHandler) List(c *gin.Context) {
	limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if errLimit != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	offset, errOffset := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if errOffset != nil || offset < 0 {
		offset = 0
	}

	query := h.db.WithContext(c.Request.Context()).Model(&models.Transaction{})
	if txnType := c.Query("type"); txnType != "" {
		query = query.Where("type = ?", txnType)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if userUID := c.Query("user"); userUID != "" {
		query = query.Where("user_uid = ?", userUID)
	}
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where(
			db.CaseInsensitiveLikeExpr(h.db, "student_id"),
			db.NormalizeLikePattern(h.db, studentID+"%"),
		)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var txns []models.Transaction
	if errList := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	for i := range txns {
		if txns[i].Type == "" {
			txns[i].Type = txns[i].InferType()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}
