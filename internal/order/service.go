package order

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/gateway"
	"github.com/sobatmedia/smm-store/internal/product"
	"github.com/sobatmedia/smm-store/internal/storage"
)

type Service struct {
	repository Repository
	products   ProductStore
	gateway    gateway.Gateway
	uploader   storage.Uploader
	logger     *slog.Logger
}

func NewService(repository Repository, products ProductStore, gw gateway.Gateway, uploader storage.Uploader, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		products:   products,
		gateway:    gw,
		uploader:   uploader,
		logger:     logger,
	}
}

// CreateOrder stores a new order in payment status pending. The amount is
// snapshotted from the product price at creation time so later price edits
// never change what a buyer owes.
func (s *Service) CreateOrder(dto CreateOrderDTO) (*OrderView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.GetActiveByID(dto.ProductID)
	if err != nil {
		return nil, product.ErrProductNotFound
	}

	o := &Order{
		ID:            uuid.NewString(),
		PurchaseCode:  GeneratePurchaseCode(),
		ProductID:     p.ID,
		BuyerPhone:    NormalizePhone(dto.BuyerPhone),
		BuyerName:     dto.BuyerName,
		TargetLink:    dto.TargetLink,
		Quantity:      dto.Quantity,
		Amount:        p.Price * int64(dto.Quantity),
		Notes:         dto.Notes,
		StatusPayment: PaymentStatusPending,
		StatusSeller:  SellerStatusPending,
	}
	if dto.TransactionGroupID != "" {
		groupID := dto.TransactionGroupID
		o.MidtransOrderID = &groupID
	}

	if err := s.repository.Create(o); err != nil {
		s.logger.Error("failed to create order", "product_id", p.ID, "error", err)
		return nil, internal.NewInternalError("gagal membuat pesanan", err)
	}

	o.Product = p
	view := NewOrderView(o)

	s.logger.Info("order created",
		"order_id", o.ID,
		"purchase_code", o.PurchaseCode,
		"product_id", p.ID,
		"amount", o.Amount)

	return &view, nil
}

// GetOrderStatus looks an order up by purchase code, or a whole batch by
// group id.
func (s *Service) GetOrderStatus(code string) (*StatusResult, error) {
	code = strings.ToUpper(code)

	if IsGroupID(code) {
		orders, err := s.repository.ListByGroupID(code)
		if err != nil {
			s.logger.Error("failed to list group orders", "group_id", code, "error", err)
			return nil, internal.NewInternalError("gagal mengambil pesanan", err)
		}
		if len(orders) == 0 {
			return nil, ErrOrderNotFound
		}
		views := make([]OrderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, NewOrderView(o))
		}
		return &StatusResult{Group: views}, nil
	}

	o, err := s.repository.GetByPurchaseCode(code)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	view := NewOrderView(o)
	return &StatusResult{Single: &view}, nil
}

// CreatePayment opens (or returns) the checkout session for an order.
// Paid and expired orders are rejected; an existing session is returned
// as-is so retried calls never burn a second session at the gateway. A
// grouped order gets one session covering the whole batch.
func (s *Service) CreatePayment(ctx context.Context, code string) (*PaymentResult, error) {
	o, err := s.repository.GetByPurchaseCode(strings.ToUpper(code))
	if err != nil {
		return nil, ErrOrderNotFound
	}

	if o.MidtransOrderID != nil && IsGroupID(*o.MidtransOrderID) {
		return s.createGroupPayment(ctx, o)
	}

	switch o.StatusPayment {
	case PaymentStatusPaid:
		return nil, ErrOrderAlreadyPaid
	case PaymentStatusExpire:
		return nil, ErrOrderExpired
	}

	if o.SnapToken != nil && *o.SnapToken != "" {
		return &PaymentResult{
			PurchaseCode: o.PurchaseCode,
			SnapToken:    *o.SnapToken,
			RedirectURL:  deref(o.SnapRedirectURL),
		}, nil
	}

	if o.Product == nil {
		return nil, internal.NewInternalError("produk pesanan tidak ditemukan", nil)
	}

	sess, err := s.gateway.CreateSession(ctx, gateway.OrderInfo{
		ID:           o.ID,
		PurchaseCode: o.PurchaseCode,
		Amount:       o.Amount,
		BuyerName:    deref(o.BuyerName),
		BuyerPhone:   o.BuyerPhone,
	}, []gateway.ItemInfo{{
		ID:    o.Product.ID,
		Name:  o.Product.Name,
		Price: o.Product.Price,
		Qty:   o.Quantity,
	}})
	if err != nil {
		return nil, err
	}

	// The conditional persist decides races: when another call got its
	// session in first, the stored row wins and ours is discarded.
	stored, err := s.repository.SavePaymentSession(o.ID, SessionUpdate{
		Token:       sess.Token,
		RedirectURL: sess.RedirectURL,
		RefKind:     RefKindGateway,
	})
	if err != nil {
		s.logger.Error("failed to persist payment session", "order_id", o.ID, "error", err)
		return nil, internal.NewInternalError("gagal menyimpan sesi pembayaran", err)
	}

	s.logger.Info("payment session ready",
		"order_id", o.ID,
		"purchase_code", o.PurchaseCode,
		"reused", stored.SnapToken != nil && *stored.SnapToken != sess.Token)

	return &PaymentResult{
		PurchaseCode: stored.PurchaseCode,
		SnapToken:    deref(stored.SnapToken),
		RedirectURL:  deref(stored.SnapRedirectURL),
	}, nil
}

// createGroupPayment opens one session for every row of a batch. The
// session is charged the batch total with one line item per order, and the
// group settlement later marks exactly the rows that total covered.
func (s *Service) createGroupPayment(ctx context.Context, o *Order) (*PaymentResult, error) {
	groupID := *o.MidtransOrderID

	orders, err := s.repository.ListByGroupID(groupID)
	if err != nil || len(orders) == 0 {
		s.logger.Error("failed to list group orders", "group_id", groupID, "error", err)
		return nil, internal.NewInternalError("gagal mengambil pesanan", err)
	}

	var total int64
	items := make([]gateway.ItemInfo, 0, len(orders))
	for _, sibling := range orders {
		switch sibling.StatusPayment {
		case PaymentStatusPaid:
			return nil, ErrOrderAlreadyPaid
		case PaymentStatusExpire:
			return nil, ErrOrderExpired
		}
		if sibling.SnapToken != nil && *sibling.SnapToken != "" {
			return &PaymentResult{
				PurchaseCode: o.PurchaseCode,
				SnapToken:    *sibling.SnapToken,
				RedirectURL:  deref(sibling.SnapRedirectURL),
			}, nil
		}
		if sibling.Product == nil {
			return nil, internal.NewInternalError("produk pesanan tidak ditemukan", nil)
		}
		total += sibling.Amount
		items = append(items, gateway.ItemInfo{
			ID:    sibling.Product.ID,
			Name:  sibling.Product.Name,
			Price: sibling.Product.Price,
			Qty:   sibling.Quantity,
		})
	}

	sess, err := s.gateway.CreateSession(ctx, gateway.OrderInfo{
		ID:           groupID,
		PurchaseCode: groupID,
		Amount:       total,
		BuyerName:    deref(o.BuyerName),
		BuyerPhone:   o.BuyerPhone,
	}, items)
	if err != nil {
		return nil, err
	}

	stored, err := s.repository.SaveGroupPaymentSession(groupID, SessionUpdate{
		Token:       sess.Token,
		RedirectURL: sess.RedirectURL,
		RefKind:     RefKindGateway,
	})
	if err != nil {
		s.logger.Error("failed to persist group payment session", "group_id", groupID, "error", err)
		return nil, internal.NewInternalError("gagal menyimpan sesi pembayaran", err)
	}

	s.logger.Info("group payment session ready",
		"group_id", groupID,
		"orders", len(orders),
		"amount", total)

	return &PaymentResult{
		PurchaseCode: o.PurchaseCode,
		SnapToken:    deref(stored.SnapToken),
		RedirectURL:  deref(stored.SnapRedirectURL),
	}, nil
}

// SubmitPaymentProof stores a manual transfer proof image and marks the
// order (or every order in the batch) as waiting for review.
func (s *Service) SubmitPaymentProof(ctx context.Context, code, filename, contentType string, file io.Reader) (*ProofResult, error) {
	orders, err := s.resolveOrders(strings.ToUpper(code))
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("proofs/%s/%s%s", code, uuid.NewString(), ext)

	proofURL, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		s.logger.Error("failed to upload payment proof", "code", code, "error", err)
		return nil, err
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	updated, err := s.repository.MarkManualProof(ids, proofURL)
	if err != nil {
		s.logger.Error("failed to record payment proof", "code", code, "error", err)
		return nil, internal.NewInternalError("gagal menyimpan bukti pembayaran", err)
	}

	s.logger.Info("payment proof submitted", "code", code, "orders_updated", updated)

	return &ProofResult{ProofURL: proofURL, OrdersUpdated: updated}, nil
}

// HandleWebhook processes a payment notification. It never returns an
// error to the transport layer: the gateway retries on non-200 responses
// and a retry storm helps nobody, so failures are logged and swallowed.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte) {
	n, err := s.gateway.VerifyNotification(ctx, payload)
	if err != nil {
		s.logger.Warn("webhook verification failed", "error", err)
		return
	}

	status := MapPaymentStatus(n.TransactionStatus, n.FraudStatus)

	orders, err := s.resolveWebhookOrders(n.OrderID)
	if err != nil {
		s.logger.Warn("webhook for unknown order", "order_id", n.OrderID, "transaction_status", n.TransactionStatus)
		return
	}

	for _, o := range orders {
		log := &PaymentLog{
			ID:                uuid.NewString(),
			OrderID:           o.ID,
			TransactionStatus: n.TransactionStatus,
			RawPayload:        string(payload),
			CreatedAt:         time.Now(),
		}
		if n.TransactionID != "" {
			tid := n.TransactionID
			log.TransactionID = &tid
		}
		if n.PaymentType != "" {
			pt := n.PaymentType
			log.PaymentType = &pt
		}

		if err := s.repository.ApplyWebhook(log, o.ID, status); err != nil {
			s.logger.Error("failed to apply webhook",
				"order_id", o.ID,
				"status", status,
				"error", err)
			continue
		}

		s.logger.Info("webhook applied",
			"order_id", o.ID,
			"transaction_status", n.TransactionStatus,
			"status_payment", status)
	}
}

// RefreshPaymentStatus re-checks the gateway and persists the mapped
// status. Used by the storefront's "check payment" button.
func (s *Service) RefreshPaymentStatus(ctx context.Context, code string) (*OrderView, error) {
	o, err := s.repository.GetByPurchaseCode(strings.ToUpper(code))
	if err != nil {
		return nil, ErrOrderNotFound
	}

	ts, err := s.gateway.GetStatus(ctx, o.GatewayOrderID())
	if err != nil {
		return nil, err
	}

	status := MapPaymentStatus(ts.TransactionStatus, ts.FraudStatus)
	if status != o.StatusPayment {
		if err := s.repository.UpdatePaymentStatus(o.ID, status); err != nil {
			s.logger.Error("failed to update payment status", "order_id", o.ID, "error", err)
			return nil, internal.NewInternalError("gagal memperbarui status pembayaran", err)
		}
		o.StatusPayment = status
	}

	view := NewOrderView(o)
	return &view, nil
}

// GetTransactionStatus proxies a raw gateway status check.
func (s *Service) GetTransactionStatus(ctx context.Context, orderID string) (*gateway.TransactionStatus, error) {
	return s.gateway.GetStatus(ctx, orderID)
}

func (s *Service) resolveOrders(code string) ([]*Order, error) {
	if IsGroupID(code) {
		orders, err := s.repository.ListByGroupID(code)
		if err != nil || len(orders) == 0 {
			return nil, ErrOrderNotFound
		}
		return orders, nil
	}
	o, err := s.repository.GetByPurchaseCode(code)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return []*Order{o}, nil
}

// resolveWebhookOrders maps a gateway order_id back to rows: a plain order
// id for single checkouts, a group id spanning several rows for batches.
func (s *Service) resolveWebhookOrders(gatewayOrderID string) ([]*Order, error) {
	if IsGroupID(gatewayOrderID) {
		orders, err := s.repository.ListByGroupID(gatewayOrderID)
		if err != nil || len(orders) == 0 {
			return nil, ErrOrderNotFound
		}
		return orders, nil
	}
	o, err := s.repository.GetByID(gatewayOrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return []*Order{o}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
