// Package payment adapts the Midtrans payment provider to the top-up
// settlement contract. Webhook payloads are never trusted directly: every
// notification is re-checked against the provider API before crediting.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	log "github.com/sirupsen/logrus"

	"github.com/volt-campus/VoltRentalAPI/internal/config"
	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
	"github.com/volt-campus/VoltRentalAPI/internal/wallet"
)

// orderPrefix namespaces wallet top-up orders at the provider.
const orderPrefix = "topup-"

// Service creates provider checkout sessions and settles their notifications.
type Service struct {
	snap    *snap.Client
	core    *coreapi.Client
	wallets *wallet.Service
}

// NewService constructs a Service. Without a server key the provider path is
// disabled and every call fails with a server error.
func NewService(cfg config.MidtransConfig, wallets *wallet.Service) *Service {
	s := &Service{wallets: wallets}
	if strings.TrimSpace(cfg.ServerKey) == "" {
		return s
	}
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	var snapClient snap.Client
	snapClient.New(cfg.ServerKey, env)
	s.snap = &snapClient

	var coreClient coreapi.Client
	coreClient.New(cfg.ServerKey, env)
	s.core = &coreClient
	return s
}

// Enabled reports whether provider credentials are configured.
func (s *Service) Enabled() bool { return s.snap != nil && s.core != nil }

// CheckoutResult describes a created provider checkout session.
type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// CreateTopUp opens a provider checkout for a wallet top-up. Nothing is
// written to the ledger until the settlement notification arrives.
func (s *Service) CreateTopUp(_ context.Context, user models.User, amount float64) (*CheckoutResult, error) {
	if !s.Enabled() {
		return nil, fault.Server(errors.New("payment provider not configured"))
	}
	if amount <= 0 {
		return nil, fault.Validation("invalid amount")
	}

	orderID := fmt.Sprintf("%s%s-%d", orderPrefix, user.UID, time.Now().UTC().UnixMilli())
	gross := int64(amount)

	resp, errCreate := s.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: strings.TrimSpace(user.FirstName + " " + user.LastName),
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    "wallet-topup",
			Name:  "Volt Wallet Top-up",
			Price: gross,
			Qty:   1,
		}},
	})
	if errCreate != nil {
		return nil, fault.Server(errCreate)
	}

	return &CheckoutResult{OrderID: orderID, Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// HandleNotification settles a provider webhook. The order id is re-checked
// with the provider; only capture/settlement credits the wallet, and the order
// id doubles as the ledger transaction id so redeliveries are no-ops.
func (s *Service) HandleNotification(ctx context.Context, payload map[string]any) error {
	if !s.Enabled() {
		return fault.Server(errors.New("payment provider not configured"))
	}

	orderID, _ := payload["order_id"].(string)
	if orderID == "" {
		return fault.Validation("missing order_id")
	}

	status, errCheck := s.core.CheckTransaction(orderID)
	if errCheck != nil {
		return fault.Server(errCheck)
	}
	if status == nil {
		return fault.NotFound("order", orderID)
	}

	switch status.TransactionStatus {
	case "capture", "settlement":
		userUID, errParse := userFromOrderID(orderID)
		if errParse != nil {
			return errParse
		}
		amount, errAmount := strconv.ParseFloat(status.GrossAmount, 64)
		if errAmount != nil || amount <= 0 {
			return fault.Validation("unparseable gross amount")
		}
		return s.wallets.Credit(ctx, orderID, userUID, amount)
	case "deny", "cancel", "expire":
		log.WithFields(log.Fields{"order": orderID, "status": status.TransactionStatus}).
			Info("provider top-up not settled")
		return nil
	default:
		// Still pending at the provider; the next notification decides.
		return nil
	}
}

// userFromOrderID recovers the user UID from a top-up order id of the form
// topup-<uid>-<unixms>.
func userFromOrderID(orderID string) (string, error) {
	if !strings.HasPrefix(orderID, orderPrefix) {
		return "", fault.Validation("unrecognized order id")
	}
	rest := strings.TrimPrefix(orderID, orderPrefix)
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 {
		return "", fault.Validation("unrecognized order id")
	}
	return rest[:idx], nil
}
