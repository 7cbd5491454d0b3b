package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sobatmedia/smm-store/internal"
)

// DummyGateway stands in for Midtrans during local development and tests.
// Every session succeeds and every status check reports settlement.
type DummyGateway struct {
	frontendURL string
	logger      *slog.Logger
}

func NewDummyGateway(frontendURL string, logger *slog.Logger) *DummyGateway {
	return &DummyGateway{frontendURL: frontendURL, logger: logger}
}

func (g *DummyGateway) CreateSession(_ context.Context, ord OrderInfo, _ []ItemInfo) (*Session, error) {
	token := "DUMMY-TOKEN-" + uuid.NewString()
	g.logger.Info("dummy gateway issued session", "order_id", ord.ID, "token", token)
	return &Session{
		Token:       token,
		RedirectURL: fmt.Sprintf("%s/cek-pesanan?code=%s", g.frontendURL, ord.PurchaseCode),
	}, nil
}

// dummyNotification reads the status fields straight from the body so
// local webhook tests can drive any transition with curl.
type dummyNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

func (g *DummyGateway) VerifyNotification(_ context.Context, payload []byte) (*Notification, error) {
	var p dummyNotification
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, internal.NewValidationError("payload webhook tidak valid", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if p.OrderID == "" {
		return nil, internal.NewValidationError("payload webhook tanpa order_id", internal.ErrCodeValidationFailed)
	}

	if p.TransactionStatus == "" {
		p.TransactionStatus = "settlement"
	}
	if p.TransactionStatus == "capture" && p.FraudStatus == "" {
		p.FraudStatus = "accept"
	}
	if p.PaymentType == "" {
		p.PaymentType = "dummy"
	}

	return &Notification{
		OrderID:           p.OrderID,
		TransactionID:     p.TransactionID,
		TransactionStatus: p.TransactionStatus,
		FraudStatus:       p.FraudStatus,
		PaymentType:       p.PaymentType,
	}, nil
}

func (g *DummyGateway) GetStatus(_ context.Context, orderID string) (*TransactionStatus, error) {
	return &TransactionStatus{
		OrderID:           orderID,
		TransactionID:     "dummy-" + orderID,
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		PaymentType:       "dummy",
	}, nil
}
