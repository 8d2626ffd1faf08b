// Package admin wires the operator console routes.
package admin

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/cache"
	"github.com/volt-campus/VoltRentalAPI/internal/config"
	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/http/api/admin/handlers"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
	"github.com/volt-campus/VoltRentalAPI/internal/whitelist"
)

// Deps carries the services the admin routes depend on.
type Deps struct {
	DB      *gorm.DB
	Auth    config.AuthConfig
	Wallets *wallet.Service
	Cache   *cache.Cache
}

// RegisterAdminRoutes registers the login endpoint and authenticated console
// routes.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	group := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Auth)
	group.POST("/login", authHandler.Login)

	authed := group.Group("")
	authed.Use(httpapi.AdminAuthMiddleware(deps.Auth.AdminSecret))

	dashboardHandler := handlers.NewDashboardHandler(deps.DB, deps.Cache)
	authed.GET("/dashboard", dashboardHandler.Stats)

	transactionHandler := handlers.NewTransactionAdminHandler(deps.DB)
	authed.GET("/transactions", transactionHandler.List)

	topUpHandler := handlers.NewTopUpHandler(deps.DB, deps.Wallets, deps.Cache)
	authed.GET("/topups/pending", topUpHandler.ListPending)
	authed.POST("/topups/:id/approve", topUpHandler.Approve)
	authed.POST("/topups/:id/deny", topUpHandler.Deny)

	voltHandler := handlers.NewVoltAdminHandler(deps.DB)
	authed.POST("/volts", voltHandler.Create)
	authed.PUT("/volts/:id", voltHandler.Update)

	whitelistHandler := handlers.NewWhitelistHandler(whitelist.NewImporter(deps.DB))
	authed.POST("/whitelist/import", whitelistHandler.Import)
	authed.GET("/whitelist/:studentId", whitelistHandler.Lookup)

	settingsHandler := handlers.NewSettingsHandler(deps.DB)
	authed.GET("/settings", settingsHandler.List)
	authed.PUT("/settings", settingsHandler.Update)
}
