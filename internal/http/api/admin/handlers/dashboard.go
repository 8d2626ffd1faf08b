package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/cache"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// dashboardCacheKey holds the aggregated dashboard payload in redis.
const dashboardCacheKey = "admin:dashboard"

// dashboardCacheTTL bounds staleness of the cached aggregates.
const dashboardCacheTTL = 30 * time.Second

// DashboardHandler serves fleet and revenue aggregates for the admin console.
type DashboardHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB, c *cache.Cache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: c}
}

// dashboardStats is the aggregated dashboard payload.
type dashboardStats struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalVolts        int64   `json:"totalVolts"`
	AvailableVolts    int64   `json:"availableVolts"`
	RentedVolts       int64   `json:"rentedVolts"`
	ActiveRentals     int64   `json:"activeRentals"`
	PendingTopUps     int64   `json:"pendingTopUps"`
	TotalRentRevenue  float64 `json:"totalRentRevenue"`
	TotalPenaltyPaid  float64 `json:"totalPenaltyPaid"`
	TotalOutstanding  float64 `json:"totalOutstandingDebt"`
	TotalWalletFloat  float64 `json:"totalWalletBalance"`
	GeneratedAt       string  `json:"generatedAt"`
}

// Stats returns fleet, rental and revenue aggregates. Results are cached
// briefly so the console can poll without hammering the database.
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var stats dashboardStats
	if h.cache.GetJSON(ctx, dashboardCacheKey, &stats) {
		c.JSON(http.StatusOK, stats)
		return
	}

	db := h.db.WithContext(ctx)
	if errCount := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	db.Model(&models.Volt{}).Count(&stats.TotalVolts)
	db.Model(&models.Volt{}).Where("status = ?", models.VoltAvailable).Count(&stats.AvailableVolts)
	db.Model(&models.Volt{}).Where("status = ?", models.VoltRented).Count(&stats.RentedVolts)
	db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TxnRent, models.TxnActive).
		Count(&stats.ActiveRentals)
	db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TxnTopUp, models.TxnPending).
		Count(&stats.PendingTopUps)

	db.Model(&models.Transaction{}).
		Where("type IN ?", []string{models.TxnRent, models.TxnReturn}).
		Select("COALESCE(SUM(fee), 0)").Scan(&stats.TotalRentRevenue)
	db.Model(&models.Transaction{}).
		Where("type = ?", models.TxnReturn).
		Select("COALESCE(SUM(amount_paid), 0)").Scan(&stats.TotalPenaltyPaid)
	db.Model(&models.Wallet{}).
		Select("COALESCE(SUM(unpaid_debt), 0)").Scan(&stats.TotalOutstanding)
	db.Model(&models.Wallet{}).
		Select("COALESCE(SUM(current_balance), 0)").Scan(&stats.TotalWalletFloat)

	stats.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	h.cache.SetJSON(ctx, dashboardCacheKey, stats, dashboardCacheTTL)

	c.JSON(http.StatusOK, stats)
}
