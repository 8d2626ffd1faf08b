// Package front wires the student-facing routes.
package front

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/blobstore"
	"github.com/volt-campus/VoltRentalAPI/internal/config"
	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/http/api/front/handlers"
	"github.com/volt-campus/VoltRentalAPI/internal/payment"
	"github.com/volt-campus/VoltRentalAPI/internal/rental"
	"github.com/volt-campus/VoltRentalAPI/internal/users"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
)

// Deps carries the services the front routes depend on.
type Deps struct {
	DB       *gorm.DB
	Auth     config.AuthConfig
	Engine   *rental.Engine
	Wallets  *wallet.Service
	Users    *users.Service
	Payments *payment.Service
	Receipts blobstore.Store
}

// RegisterFrontRoutes registers public and authenticated student routes.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	front := r.Group("/v0/front")

	// Provider callbacks authenticate by signature, not bearer token.
	paymentHandler := handlers.NewPaymentHandler(deps.DB, deps.Payments)
	front.POST("/payments/notification", paymentHandler.Notification)

	authed := front.Group("")
	authed.Use(httpapi.UserAuthMiddleware(deps.Auth.IdentitySecret, deps.Users))

	profileHandler := handlers.NewProfileHandler(deps.Users)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	voltHandler := handlers.NewVoltHandler(deps.DB, deps.Engine)
	authed.GET("/volts", voltHandler.List)
	authed.POST("/volts/:id/reserve", voltHandler.Reserve)
	authed.POST("/volts/:id/release", voltHandler.Release)

	rentalHandler := handlers.NewRentalHandler(deps.Engine)
	authed.POST("/rent/confirm", rentalHandler.Rent)
	authed.POST("/return/confirm", rentalHandler.Return)

	walletHandler := handlers.NewWalletHandler(deps.DB, deps.Wallets, deps.Receipts)
	authed.GET("/wallet", walletHandler.Get)
	authed.POST("/wallet/topup", walletHandler.ManualTopUp)
	authed.GET("/wallet/topup/:id", walletHandler.TopUpStatus)
	authed.POST("/wallet/topup/checkout", paymentHandler.Checkout)

	transactionHandler := handlers.NewTransactionHandler(deps.DB)
	authed.GET("/transactions", transactionHandler.List)
}
