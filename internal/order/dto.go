package order

import (
	"time"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/core/common/validation"
	"github.com/sobatmedia/smm-store/internal/product"
)

type CreateOrderDTO struct {
	ProductID          string  `json:"product_id"`
	BuyerPhone         string  `json:"buyer_phone"`
	BuyerName          *string `json:"buyer_name,omitempty"`
	TargetLink         *string `json:"target_link,omitempty"`
	Quantity           int     `json:"quantity"`
	Notes              *string `json:"notes,omitempty"`
	TransactionGroupID string  `json:"transaction_group_id,omitempty"`
}

func (d *CreateOrderDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("product_id", d.ProductID).Required()
	validator.Field("buyer_phone", d.BuyerPhone).Required().Custom(func(v interface{}) *internal.AppError {
		phone, _ := v.(string)
		if phone != "" && !IsValidPhone(phone) {
			return internal.NewValidationFieldError("buyer_phone", "Nomor telepon tidak valid", internal.ErrCodeInvalidPhone)
		}
		return nil
	})
	validator.Field("quantity", d.Quantity).Required().MinInt(1, internal.ErrCodeInvalidQuantity)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}

	if d.TransactionGroupID != "" && !IsGroupID(d.TransactionGroupID) {
		return internal.NewValidationFieldError("transaction_group_id", "ID grup transaksi tidak valid", internal.ErrCodeValidationFailed)
	}
	return nil
}

type PayOrderDTO struct {
	PurchaseCode string `json:"purchase_code"`
}

func (d *PayOrderDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("purchase_code", d.PurchaseCode).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// OrderView is the customer-facing projection: enough to track an order,
// nothing operational.
type OrderView struct {
	ID              string           `json:"id"`
	PurchaseCode    string           `json:"purchase_code"`
	BuyerName       *string          `json:"buyer_name,omitempty"`
	TargetLink      *string          `json:"target_link,omitempty"`
	Quantity        int              `json:"quantity"`
	Amount          int64            `json:"amount"`
	StatusPayment   string           `json:"status_payment"`
	StatusSeller    string           `json:"status_seller"`
	SnapToken       *string          `json:"snap_token,omitempty"`
	SnapRedirectURL *string          `json:"snap_redirect_url,omitempty"`
	PaymentRefKind  *string          `json:"payment_ref_kind,omitempty"`
	GroupID         *string          `json:"group_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Product         *product.Summary `json:"product,omitempty"`
}

func NewOrderView(o *Order) OrderView {
	v := OrderView{
		ID:              o.ID,
		PurchaseCode:    o.PurchaseCode,
		BuyerName:       o.BuyerName,
		TargetLink:      o.TargetLink,
		Quantity:        o.Quantity,
		Amount:          o.Amount,
		StatusPayment:   o.StatusPayment,
		StatusSeller:    o.StatusSeller,
		SnapToken:       o.SnapToken,
		SnapRedirectURL: o.SnapRedirectURL,
		PaymentRefKind:  o.PaymentRefKind,
		CreatedAt:       o.CreatedAt,
	}
	if o.MidtransOrderID != nil && IsGroupID(*o.MidtransOrderID) {
		v.GroupID = o.MidtransOrderID
	}
	if o.Product != nil {
		s := o.Product.Summarize()
		v.Product = &s
	}
	return v
}

// StatusResult is the answer to an order-status lookup: one order for a
// purchase code, the whole batch for a group id.
type StatusResult struct {
	Single *OrderView  `json:"-"`
	Group  []OrderView `json:"-"`
}

func (r StatusResult) Payload() interface{} {
	if r.Single != nil {
		return r.Single
	}
	return r.Group
}

// PaymentResult is what POST /order/pay returns.
type PaymentResult struct {
	PurchaseCode string `json:"purchase_code"`
	SnapToken    string `json:"snap_token"`
	RedirectURL  string `json:"redirect_url"`
}

// ProofResult reports a manual proof submission.
type ProofResult struct {
	ProofURL      string `json:"proof_url"`
	OrdersUpdated int64  `json:"orders_updated"`
}
