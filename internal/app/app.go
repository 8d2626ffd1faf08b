// Package app boots the rental service: configuration, storage, services and
// the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/volt-campus/VoltRentalAPI/internal/blobstore"
	"github.com/volt-campus/VoltRentalAPI/internal/cache"
	"github.com/volt-campus/VoltRentalAPI/internal/config"
	"github.com/volt-campus/VoltRentalAPI/internal/db"
	adminapi "github.com/volt-campus/VoltRentalAPI/internal/http/api/admin"
	"github.com/volt-campus/VoltRentalAPI/internal/http/api/front"
	"github.com/volt-campus/VoltRentalAPI/internal/ledger"
	"github.com/volt-campus/VoltRentalAPI/internal/logging"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/payment"
	"github.com/volt-campus/VoltRentalAPI/internal/rental"
	"github.com/volt-campus/VoltRentalAPI/internal/security"
	"github.com/volt-campus/VoltRentalAPI/internal/settings"
	"github.com/volt-campus/VoltRentalAPI/internal/users"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
)

// Migrate opens the database and runs migrations.
func Migrate(_ context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging)

	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := settings.SeedDefaults(ctx, conn); errSeed != nil {
		return errSeed
	}
	if errAdmin := seedAdmin(ctx, conn); errAdmin != nil {
		return errAdmin
	}

	receipts, err := blobstore.NewLocalStore(cfg.Receipts.Dir, cfg.Receipts.BaseURL)
	if err != nil {
		return err
	}

	store := ledger.NewStore(conn)
	userSvc := users.NewService(store)
	walletSvc := wallet.NewService(store)
	engine := rental.NewEngine(store)
	paymentSvc := payment.NewService(cfg.Midtrans, walletSvc)
	redisCache := cache.New(cfg.Redis)

	r := buildRouter(conn, cfg, engine, walletSvc, userSvc, paymentSvc, receipts, redisCache)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case <-ctx.Done():
	case errServe := <-errCh:
		return errServe
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildRouter assembles the gin engine and registers all routes.
func buildRouter(conn *gorm.DB, cfg *config.Config, engine *rental.Engine, walletSvc *wallet.Service,
	userSvc *users.Service, paymentSvc *payment.Service, receipts *blobstore.LocalStore, redisCache *cache.Cache) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static(cfg.Receipts.BaseURL, receipts.Dir())

	front.RegisterFrontRoutes(r, front.Deps{
		DB:       conn,
		Auth:     cfg.Auth,
		Engine:   engine,
		Wallets:  walletSvc,
		Users:    userSvc,
		Payments: paymentSvc,
		Receipts: receipts,
	})
	adminapi.RegisterAdminRoutes(r, adminapi.Deps{
		DB:      conn,
		Auth:    cfg.Auth,
		Wallets: walletSvc,
		Cache:   redisCache,
	})
	return r
}

// seedAdmin bootstraps the first operator account from the environment so a
// fresh deployment is reachable. Existing admins are never touched.
func seedAdmin(ctx context.Context, conn *gorm.DB) error {
	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if errCount := conn.WithContext(ctx).Model(&models.Admin{}).
		Where("username = ?", username).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		return nil
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	if errCreate := conn.WithContext(ctx).Create(&models.Admin{
		Username: username,
		Password: hash,
	}).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("username", username).Info("seeded admin account")
	return nil
}
