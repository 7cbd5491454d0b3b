package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/sobatmedia/smm-store/internal"
)

// Midtrans caps item names on the checkout page.
const maxItemNameLen = 50

// MidtransGateway implements Gateway against the Midtrans Snap and Core APIs.
type MidtransGateway struct {
	snap        snap.Client
	core        coreapi.Client
	frontendURL string
	logger      *slog.Logger
}

func NewMidtransGateway(cfg internal.MidtransConfig, frontendURL string, logger *slog.Logger) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	// The midtrans SDK routes every call through this shared client.
	if cfg.CallTimeout > 0 {
		midtrans.DefaultGoHttpClient = &http.Client{Timeout: cfg.CallTimeout}
	}

	g := &MidtransGateway{
		frontendURL: frontendURL,
		logger:      logger,
	}
	g.snap.New(cfg.ServerKey, env)
	g.core.New(cfg.ServerKey, env)
	return g
}

func (g *MidtransGateway) CreateSession(_ context.Context, ord OrderInfo, items []ItemInfo) (*Session, error) {
	buyerName := ord.BuyerName
	if buyerName == "" {
		buyerName = "Customer"
	}

	details := make([]midtrans.ItemDetails, 0, len(items))
	for _, it := range items {
		details = append(details, midtrans.ItemDetails{
			ID:    it.ID,
			Price: it.Price,
			Qty:   int32(it.Qty),
			Name:  truncate(it.Name, maxItemNameLen),
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  ord.ID,
			GrossAmt: ord.Amount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: buyerName,
			Phone: ord.BuyerPhone,
		},
		Items: &details,
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/cek-pesanan?code=%s", g.frontendURL, ord.PurchaseCode),
		},
	}

	resp, midErr := g.snap.CreateTransaction(req)
	if midErr != nil {
		g.logger.Error("midtrans create transaction failed",
			"order_id", ord.ID,
			"status_code", midErr.StatusCode,
			"error", midErr.Message)
		return nil, internal.NewExternalError("Gagal membuat sesi pembayaran", midErr)
	}

	return &Session{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// webhookPayload is the only field read from the inbound body. Everything
// else comes back from CheckTransaction, so a forged body can at worst ask
// us to re-check an order we already know about.
type webhookPayload struct {
	OrderID string `json:"order_id"`
}

func (g *MidtransGateway) VerifyNotification(ctx context.Context, payload []byte) (*Notification, error) {
	var p webhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, internal.NewValidationError("payload webhook tidak valid", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if p.OrderID == "" {
		return nil, internal.NewValidationError("payload webhook tanpa order_id", internal.ErrCodeValidationFailed)
	}

	status, err := g.GetStatus(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	return &Notification{
		OrderID:           status.OrderID,
		TransactionID:     status.TransactionID,
		TransactionStatus: status.TransactionStatus,
		FraudStatus:       status.FraudStatus,
		PaymentType:       status.PaymentType,
	}, nil
}

func (g *MidtransGateway) GetStatus(_ context.Context, orderID string) (*TransactionStatus, error) {
	resp, midErr := g.core.CheckTransaction(orderID)
	if midErr != nil {
		g.logger.Error("midtrans check transaction failed",
			"order_id", orderID,
			"status_code", midErr.StatusCode,
			"error", midErr.Message)
		return nil, internal.NewExternalError("Gagal memeriksa status transaksi", midErr)
	}

	return &TransactionStatus{
		OrderID:           resp.OrderID,
		TransactionID:     resp.TransactionID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		PaymentType:       resp.PaymentType,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
