package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/sobatmedia/smm-store/internal/admin"
	"github.com/sobatmedia/smm-store/internal/order"
)

// OrderStore is the back-office view over orders and payment logs:
// unfiltered listing, deletion, and dashboard aggregates.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) List(f admin.OrderListFilter) ([]*order.Order, int64, error) {
	query := s.db.Model(&order.Order{})

	if f.StatusPayment != "" {
		query = query.Where("status_payment = ?", f.StatusPayment)
	}
	if f.StatusSeller != "" {
		query = query.Where("status_seller = ?", f.StatusSeller)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("purchase_code LIKE ? OR buyer_phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*order.Order
	offset := (f.Page - 1) * f.Limit
	err := query.Preload("Product").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (s *OrderStore) GetDetail(id string) (*order.Order, []*order.PaymentLog, error) {
	var o order.Order
	if err := s.db.Preload("Product").First(&o, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}

	var logs []*order.PaymentLog
	if err := s.db.Where("order_id = ?", id).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, nil, err
	}

	return &o, logs, nil
}

func (s *OrderStore) UpdateSellerStatus(id, status string) (*order.Order, error) {
	return s.updateStatus(id, "status_seller", status)
}

func (s *OrderStore) UpdatePaymentStatus(id, status string) (*order.Order, error) {
	return s.updateStatus(id, "status_payment", status)
}

func (s *OrderStore) updateStatus(id, column, status string) (*order.Order, error) {
	result := s.db.Model(&order.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var o order.Order
	if err := s.db.Preload("Product").First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OrderStore) Delete(id string) error {
	// payment_logs go with the order via ON DELETE CASCADE.
	result := s.db.Delete(&order.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *OrderStore) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	result := s.db.Delete(&order.Order{}, "created_at < ?", cutoff)
	return result.RowsAffected, result.Error
}

func (s *OrderStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&order.Order{}).Count(&count).Error
	return count, err
}

func (s *OrderStore) CountCreatedSince(t time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&order.Order{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}

func (s *OrderStore) SumPaidAmount() (int64, error) {
	var sum *int64
	err := s.db.Model(&order.Order{}).
		Where("status_payment = ?", order.PaymentStatusPaid).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (s *OrderStore) Recent(limit int) ([]*order.Order, error) {
	var orders []*order.Order
	err := s.db.Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

type statusCount struct {
	Status string
	Count  int64
}

func (s *OrderStore) CountByPaymentStatus() (map[string]int64, error) {
	return s.countByColumn("status_payment")
}

func (s *OrderStore) CountBySellerStatus() (map[string]int64, error) {
	return s.countByColumn("status_seller")
}

func (s *OrderStore) countByColumn(column string) (map[string]int64, error) {
	var rows []statusCount
	err := s.db.Model(&order.Order{}).
		Select(column + " AS status, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (s *OrderStore) ListPaymentLogs(f admin.PaymentLogFilter) ([]*order.PaymentLog, int64, error) {
	query := s.db.Model(&order.PaymentLog{})
	if f.OrderID != "" {
		query = query.Where("order_id = ?", f.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*order.PaymentLog
	offset := (f.Page - 1) * f.Limit
	err := query.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
