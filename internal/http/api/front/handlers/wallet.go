package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/blobstore"
	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
)

// maxReceiptBytes caps manual top-up receipt uploads.
const maxReceiptBytes = 5 << 20

// WalletHandler handles balance reads and manual top-up submission.
type WalletHandler struct {
	db       *gorm.DB
	wallets  *wallet.Service
	receipts blobstore.Store
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(db *gorm.DB, wallets *wallet.Service, receipts blobstore.Store) *WalletHandler {
	return &WalletHandler{db: db, wallets: wallets, receipts: receipts}
}

// Get returns the current user's wallet. A user who never topped up gets the
// zero wallet rather than a 404.
func (h *WalletHandler) Get(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var w models.Wallet
	errFind := h.db.WithContext(c.Request.Context()).Where("user_uid = ?", uid).First(&w).Error
	if errFind != nil && !errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentBalance": w.CurrentBalance,
		"unpaidDebt":     w.UnpaidDebt,
	})
}

// ManualTopUp accepts a multipart form with an amount and a payment receipt
// image, stores the receipt and records a pending top-up for admin review.
func (h *WalletHandler) ManualTopUp(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	amount, errAmount := strconv.ParseFloat(c.PostForm("amount"), 64)
	if errAmount != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	fileHeader, errFile := c.FormFile("receipt")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing receipt"})
		return
	}
	if fileHeader.Size > maxReceiptBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt too large"})
		return
	}

	file, errOpen := fileHeader.Open()
	if errOpen != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read receipt"})
		return
	}
	defer file.Close()
	data, errRead := io.ReadAll(io.LimitReader(file, maxReceiptBytes))
	if errRead != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read receipt"})
		return
	}

	url, path, errStore := h.receipts.Store(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if errStore != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store receipt"})
		return
	}

	txnID, err := h.wallets.CreateManual(c.Request.Context(), uid, amount, url, path)
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transactionId": txnID,
		"status":        models.TxnPending,
		"receiptUrl":    url,
	})
}

// TopUpStatus reports the review state of one of the user's top-ups.
func (h *WalletHandler) TopUpStatus(c *gin.Context) {
	uid := getUserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var txn models.UserTransaction
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_uid = ?", c.Param("id"), uid).
		First(&txn).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactionId": txn.ID,
		"status":        txn.Status,
		"amount":        txn.Amount,
		"method":        txn.Method,
		"completedAt":   txn.CompletedAt,
	})
}
