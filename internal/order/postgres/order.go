package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobatmedia/smm-store/internal/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *order.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	return r.db.Omit("Product").Create(o).Error
}

func (r *OrderRepository) GetByID(id string) (*order.Order, error) {
	var o order.Order
	if err := r.db.Preload("Product").First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByPurchaseCode(code string) (*order.Order, error) {
	var o order.Order
	if err := r.db.Preload("Product").First(&o, "purchase_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByGroupID(groupID string) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.db.Preload("Product").
		Where("midtrans_order_id = ?", groupID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SavePaymentSession claims the session slot with a conditional update:
// only an order without a token takes the new session. Whoever lost the
// race gets the winning row back.
func (r *OrderRepository) SavePaymentSession(orderID string, sess order.SessionUpdate) (*order.Order, error) {
	result := r.db.Model(&order.Order{}).
		Where("id = ? AND snap_token IS NULL", orderID).
		Updates(map[string]interface{}{
			"snap_token":        sess.Token,
			"snap_redirect_url": sess.RedirectURL,
			"payment_ref_kind":  sess.RefKind,
			"status_payment":    order.PaymentStatusWaitingPayment,
			// Gateway transaction id defaults to the order id; a group id
			// already stored here stays untouched.
			"midtrans_order_id": gorm.Expr("COALESCE(midtrans_order_id, ?)", orderID),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	return r.GetByID(orderID)
}

// SaveGroupPaymentSession claims the session slot for a whole batch at
// once: only rows without a token take the new session, so a racing call
// finds every slot filled and gets the winning session back.
func (r *OrderRepository) SaveGroupPaymentSession(groupID string, sess order.SessionUpdate) (*order.Order, error) {
	result := r.db.Model(&order.Order{}).
		Where("midtrans_order_id = ? AND snap_token IS NULL", groupID).
		Updates(map[string]interface{}{
			"snap_token":        sess.Token,
			"snap_redirect_url": sess.RedirectURL,
			"payment_ref_kind":  sess.RefKind,
			"status_payment":    order.PaymentStatusWaitingPayment,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	orders, err := r.ListByGroupID(groupID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) UpdatePaymentStatus(orderID, status string) error {
	result := r.db.Model(&order.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status_payment": status,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyWebhook writes the audit log and the status transition atomically,
// so the log never claims a transition the order row missed.
func (r *OrderRepository) ApplyWebhook(log *order.PaymentLog, orderID, status string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if log.ID == "" {
			log.ID = uuid.NewString()
		}
		if log.CreatedAt.IsZero() {
			log.CreatedAt = time.Now()
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}

		result := tx.Model(&order.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"status_payment": status,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// MarkManualProof flips every order of a batch to the proof-submitted state
// in one transaction; a batch is never left half marked.
func (r *OrderRepository) MarkManualProof(orderIDs []string, proofURL string) (int64, error) {
	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&order.Order{}).
			Where("id IN ?", orderIDs).
			Updates(map[string]interface{}{
				"status_payment":    order.PaymentStatusWaitingPayment,
				"snap_token":        order.SnapTokenManual,
				"snap_redirect_url": proofURL,
				"payment_ref_kind":  order.RefKindManualProof,
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected
		return nil
	})
	return updated, err
}
