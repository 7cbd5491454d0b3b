// Package gateway talks to the payment provider. The rest of the
// application only sees the Gateway interface; whether it is backed by
// Midtrans or the dummy stand-in is decided once at startup.
package gateway

import (
	"context"
	"log/slog"

	"github.com/sobatmedia/smm-store/internal"
)

// Session is a hosted checkout session created at the provider.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is the verified content of a webhook callback. The fields
// come from the provider's status API, never from the inbound request body.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

// TransactionStatus is the provider's current view of a transaction.
type TransactionStatus struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

// OrderInfo carries the checkout fields a session needs. For a batch
// checkout the ID is the group id and Amount is the batch total; the
// provider only ever sees one transaction either way. It keeps this
// package decoupled from the order domain.
type OrderInfo struct {
	ID           string
	PurchaseCode string
	Amount       int64
	BuyerName    string
	BuyerPhone   string
}

// ItemInfo is one line item on the provider's checkout page.
type ItemInfo struct {
	ID    string
	Name  string
	Price int64
	Qty   int
}

// Gateway is the payment provider contract.
type Gateway interface {
	// CreateSession opens a hosted checkout session covering every given
	// line item. The sum of Price*Qty must equal ord.Amount.
	CreateSession(ctx context.Context, ord OrderInfo, items []ItemInfo) (*Session, error)

	// VerifyNotification authenticates a raw webhook payload by asking the
	// provider for the transaction's authoritative status.
	VerifyNotification(ctx context.Context, payload []byte) (*Notification, error)

	// GetStatus fetches the current transaction status for an order id.
	GetStatus(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// NewGateway selects the provider implementation from configuration.
// Placeholder or missing keys select the dummy so a fresh checkout never
// hits the real API by accident.
func NewGateway(cfg internal.MidtransConfig, frontendURL string, logger *slog.Logger) Gateway {
	if cfg.UseDummyGateway() {
		logger.Warn("midtrans server key missing or placeholder, using dummy payment gateway")
		return NewDummyGateway(frontendURL, logger)
	}
	return NewMidtransGateway(cfg, frontendURL, logger)
}
