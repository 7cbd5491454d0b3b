package admin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sobatmedia/smm-store/internal/order"
)

const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type AdminUser struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Name         string     `json:"name" gorm:"not null"`
	Role         string     `json:"role" gorm:"default:admin"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;default:true"`
	LastLogin    *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// Claims is the JWT payload for back-office sessions.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Repository defines the data access methods for admin accounts.
type Repository interface {
	Create(a *AdminUser) error
	GetByEmail(email string) (*AdminUser, error)
	GetByID(id string) (*AdminUser, error)
	RecordLogin(id string, at time.Time) error
}

// OrderListFilter collects the back-office order listing parameters.
type OrderListFilter struct {
	StatusPayment string
	StatusSeller  string
	Search        string
	Page          int
	Limit         int
}

// PaymentLogFilter collects the payment-log listing parameters.
type PaymentLogFilter struct {
	OrderID string
	Page    int
	Limit   int
}

// DashboardStats is the aggregate snapshot behind the admin landing page.
type DashboardStats struct {
	TotalOrders        int64             `json:"total_orders"`
	ActiveProducts     int64             `json:"active_products"`
	TodayOrders        int64             `json:"today_orders"`
	Revenue            int64             `json:"revenue"`
	RecentOrders       []order.OrderView `json:"recent_orders"`
	PaymentStatusCount map[string]int64  `json:"payment_status_count"`
	SellerStatusCount  map[string]int64  `json:"seller_status_count"`
}

// OrderStore is the order data the back office reads and mutates. It is a
// different slice of the orders table than the storefront repository:
// unfiltered listing, deletion, and aggregates.
type OrderStore interface {
	List(f OrderListFilter) ([]*order.Order, int64, error)
	GetDetail(id string) (*order.Order, []*order.PaymentLog, error)
	UpdateSellerStatus(id, status string) (*order.Order, error)
	UpdatePaymentStatus(id, status string) (*order.Order, error)
	Delete(id string) error
	DeleteCreatedBefore(cutoff time.Time) (int64, error)

	CountAll() (int64, error)
	CountCreatedSince(t time.Time) (int64, error)
	SumPaidAmount() (int64, error)
	Recent(limit int) ([]*order.Order, error)
	CountByPaymentStatus() (map[string]int64, error)
	CountBySellerStatus() (map[string]int64, error)

	ListPaymentLogs(f PaymentLogFilter) ([]*order.PaymentLog, int64, error)
}
