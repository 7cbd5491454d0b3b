package order

import (
	"time"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/product"
)

// Payment lifecycle statuses, driven by the gateway.
const (
	PaymentStatusPending        = "pending"
	PaymentStatusWaitingPayment = "waiting_payment"
	PaymentStatusPaid           = "paid"
	PaymentStatusExpire         = "expire"
	PaymentStatusDeny           = "deny"
	PaymentStatusRefund         = "refund"
)

// Fulfilment statuses, driven by the back office.
const (
	SellerStatusPending = "pending"
	SellerStatusProcess = "process"
	SellerStatusDone    = "done"
)

// PaymentRefKind says what snap_token and snap_redirect_url hold: a real
// gateway session or a manually submitted payment proof.
const (
	RefKindGateway     = "gateway"
	RefKindManualProof = "manual_proof"
)

// SnapTokenManual marks an order settled by a manual transfer proof instead
// of a checkout session. Clients key off this exact value.
const SnapTokenManual = "MANUAL"

var (
	PaymentStatuses = []string{
		PaymentStatusPending, PaymentStatusWaitingPayment, PaymentStatusPaid,
		PaymentStatusExpire, PaymentStatusDeny, PaymentStatusRefund,
	}
	SellerStatuses = []string{SellerStatusPending, SellerStatusProcess, SellerStatusDone}
)

type Order struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	PurchaseCode    string    `json:"purchase_code" gorm:"column:purchase_code;uniqueIndex"`
	ProductID       string    `json:"product_id" gorm:"column:product_id;not null"`
	BuyerPhone      string    `json:"buyer_phone" gorm:"column:buyer_phone;not null"`
	BuyerName       *string   `json:"buyer_name,omitempty" gorm:"column:buyer_name"`
	TargetLink      *string   `json:"target_link,omitempty" gorm:"column:target_link"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	Amount          int64     `json:"amount" gorm:"not null"`
	Notes           *string   `json:"notes,omitempty"`
	StatusPayment   string    `json:"status_payment" gorm:"column:status_payment;default:pending"`
	StatusSeller    string    `json:"status_seller" gorm:"column:status_seller;default:pending"`
	SnapToken       *string   `json:"snap_token,omitempty" gorm:"column:snap_token"`
	SnapRedirectURL *string   `json:"snap_redirect_url,omitempty" gorm:"column:snap_redirect_url"`
	PaymentRefKind  *string   `json:"payment_ref_kind,omitempty" gorm:"column:payment_ref_kind"`
	MidtransOrderID *string   `json:"midtrans_order_id,omitempty" gorm:"column:midtrans_order_id"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (Order) TableName() string {
	return "orders"
}

// GatewayOrderID is the id presented to the payment gateway: the group id
// for grouped orders, otherwise the order's own id.
func (o *Order) GatewayOrderID() string {
	if o.MidtransOrderID != nil && *o.MidtransOrderID != "" {
		return *o.MidtransOrderID
	}
	return o.ID
}

// PaymentLog is an audit record of one webhook delivery for one order.
type PaymentLog struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	OrderID           string    `json:"order_id" gorm:"column:order_id;not null"`
	TransactionID     *string   `json:"transaction_id,omitempty" gorm:"column:transaction_id"`
	TransactionStatus string    `json:"transaction_status" gorm:"column:transaction_status"`
	PaymentType       *string   `json:"payment_type,omitempty" gorm:"column:payment_type"`
	RawPayload        string    `json:"raw_payload" gorm:"column:raw_payload"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at"`
}

func (PaymentLog) TableName() string {
	return "payment_logs"
}

// SessionUpdate is the gateway session persisted onto an order.
type SessionUpdate struct {
	Token       string
	RedirectURL string
	RefKind     string
}

// Repository defines the data access methods for orders.
type Repository interface {
	Create(o *Order) error
	GetByID(id string) (*Order, error)
	GetByPurchaseCode(code string) (*Order, error)
	ListByGroupID(groupID string) ([]*Order, error)

	// SavePaymentSession persists a session only when the order has none
	// yet, then returns the stored row. Concurrent callers all see the
	// session that won.
	SavePaymentSession(orderID string, sess SessionUpdate) (*Order, error)

	// SaveGroupPaymentSession does the same for every row of a batch, so
	// all siblings carry the one session opened for the whole group.
	SaveGroupPaymentSession(groupID string, sess SessionUpdate) (*Order, error)

	UpdatePaymentStatus(orderID, status string) error

	// ApplyWebhook writes the audit log and the status change in one
	// transaction.
	ApplyWebhook(log *PaymentLog, orderID, status string) error

	// MarkManualProof marks every given order paid-by-proof in one
	// transaction and reports how many rows changed.
	MarkManualProof(orderIDs []string, proofURL string) (int64, error)
}

// ProductStore is the slice of the product repository order creation needs.
type ProductStore interface {
	GetActiveByID(id string) (*product.Product, error)
}

var (
	ErrOrderNotFound    = internal.NewNotFoundError("Pesanan tidak ditemukan", internal.ErrCodeOrderNotFound)
	ErrOrderAlreadyPaid = internal.NewConflictError("Pesanan sudah dibayar", internal.ErrCodeOrderAlreadyPaid)
	ErrOrderExpired     = internal.NewConflictError("Pesanan sudah kadaluarsa", internal.ErrCodeOrderExpired)
)
