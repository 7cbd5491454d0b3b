package admin

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/order"
	"github.com/sobatmedia/smm-store/internal/product"
)

// Statuses an operator may set by hand. Deny and refund only ever come
// from the gateway.
var adminPaymentStatuses = []string{
	order.PaymentStatusPending,
	order.PaymentStatusWaitingPayment,
	order.PaymentStatusPaid,
	order.PaymentStatusExpire,
}

const recentOrdersLimit = 10

type Service struct {
	admins     Repository
	orders     OrderStore
	products   product.Repository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(admins Repository, orders OrderStore, products product.Repository, cfg internal.SecurityConfig, logger *slog.Logger) *Service {
	return &Service{
		admins:     admins,
		orders:     orders,
		products:   products,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenDuration,
		bcryptCost: cfg.BCryptCost,
		logger:     logger,
	}
}

// Login authenticates an operator and issues a session token. Unknown
// email and wrong password produce the identical error.
func (s *Service) Login(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))

	a, err := s.admins.GetByEmail(email)
	if err != nil {
		// Burn a bcrypt round anyway so response timing does not differ
		// between unknown email and wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGfLBtYB/ZWmfG0Me6uBMJO5kW2oGfS"), []byte(dto.Password))
		return nil, internal.ErrInvalidCredentials
	}

	if !a.IsActive {
		return nil, internal.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.generateToken(a)
	if err != nil {
		s.logger.Error("failed to sign session token", "admin_id", a.ID, "error", err)
		return nil, internal.NewInternalError("gagal membuat token", err)
	}

	// Best effort: a failed timestamp write must not block the login.
	now := time.Now()
	if err := s.admins.RecordLogin(a.ID, now); err != nil {
		s.logger.Warn("failed to record last login", "admin_id", a.ID, "error", err)
	}
	a.LastLogin = &now

	s.logger.Info("admin logged in", "admin_id", a.ID, "role", a.Role)

	return &LoginResult{Token: token, Admin: NewAdminView(a)}, nil
}

func (s *Service) generateToken(a *AdminUser) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: a.Email,
		Role:  a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and verifies a session token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// GetAdmin loads one admin account, typically the token subject.
func (s *Service) GetAdmin(id string) (*AdminUser, error) {
	a, err := s.admins.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("Admin tidak ditemukan", internal.ErrCodeAdminNotFound)
	}
	return a, nil
}

// GetProfile returns the safe projection of an admin account.
func (s *Service) GetProfile(id string) (*AdminView, error) {
	a, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	return NewAdminView(a), nil
}

// CreateAdmin registers a new back-office account. The superadmin gate
// lives in the middleware; this only enforces data rules.
func (s *Service) CreateAdmin(dto CreateAdminDTO) (*AdminView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if _, err := s.admins.GetByEmail(email); err == nil {
		return nil, internal.NewConflictError("Email sudah terdaftar", internal.ErrCodeDuplicateEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("gagal membuat akun", err)
	}

	a := &AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         dto.Name,
		Role:         dto.Role,
		IsActive:     true,
	}
	if err := s.admins.Create(a); err != nil {
		s.logger.Error("failed to create admin", "email", email, "error", err)
		return nil, internal.NewInternalError("gagal membuat akun", err)
	}

	s.logger.Info("admin account created", "admin_id", a.ID, "role", a.Role)
	return NewAdminView(a), nil
}

// --- product management ---

func (s *Service) CreateProduct(dto product.CreateProductDTO) (*product.Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Platform:    dto.Platform,
		SubPlatform: dto.SubPlatform,
		Description: dto.Description,
		Price:       dto.Price,
		ImageURL:    dto.ImageURL,
		IsActive:    true,
	}
	if dto.IsActive != nil {
		p.IsActive = *dto.IsActive
	}

	if err := s.products.Create(p); err != nil {
		s.logger.Error("failed to create product", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("gagal membuat produk", err)
	}
	return p, nil
}

func (s *Service) UpdateProduct(id string, dto product.UpdateProductDTO) (*product.Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(id)
	if err != nil {
		return nil, product.ErrProductNotFound
	}

	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Platform != nil {
		p.Platform = *dto.Platform
	}
	if dto.SubPlatform != nil {
		p.SubPlatform = dto.SubPlatform
	}
	if dto.Description != nil {
		p.Description = dto.Description
	}
	if dto.Price != nil {
		p.Price = *dto.Price
	}
	if dto.ImageURL != nil {
		p.ImageURL = dto.ImageURL
	}
	if dto.IsActive != nil {
		p.IsActive = *dto.IsActive
	}

	if err := s.products.Update(p); err != nil {
		s.logger.Error("failed to update product", "product_id", id, "error", err)
		return nil, internal.NewInternalError("gagal memperbarui produk", err)
	}
	return p, nil
}

// DeleteProduct deactivates a product. Rows stay so old orders keep their
// product reference.
func (s *Service) DeleteProduct(id string) error {
	if err := s.products.SoftDelete(id); err != nil {
		return product.ErrProductNotFound
	}
	return nil
}

func (s *Service) ListProducts(f product.AdminListFilter) ([]*product.Product, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	products, total, err := s.products.ListAll(f)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, Pagination{}, internal.NewInternalError("gagal mengambil daftar produk", err)
	}
	return products, NewPagination(f.Page, f.Limit, total), nil
}

// --- order management ---

func (s *Service) ListOrders(f OrderListFilter) ([]order.OrderView, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	orders, total, err := s.orders.List(f)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, Pagination{}, internal.NewInternalError("gagal mengambil daftar pesanan", err)
	}

	views := make([]order.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, order.NewOrderView(o))
	}
	return views, NewPagination(f.Page, f.Limit, total), nil
}

// OrderDetail is an order with its webhook audit trail.
type OrderDetail struct {
	Order       *order.Order        `json:"order"`
	PaymentLogs []*order.PaymentLog `json:"payment_logs"`
}

func (s *Service) GetOrderDetail(id string) (*OrderDetail, error) {
	o, logs, err := s.orders.GetDetail(id)
	if err != nil {
		return nil, order.ErrOrderNotFound
	}
	return &OrderDetail{Order: o, PaymentLogs: logs}, nil
}

func (s *Service) UpdateSellerStatus(id, status string) (*order.Order, error) {
	if !contains(order.SellerStatuses, status) {
		return nil, internal.NewValidationError("Status seller tidak valid", internal.ErrCodeInvalidStatus)
	}
	o, err := s.orders.UpdateSellerStatus(id, status)
	if err != nil {
		return nil, order.ErrOrderNotFound
	}
	s.logger.Info("seller status updated", "order_id", id, "status", status)
	return o, nil
}

func (s *Service) UpdatePaymentStatus(id, status string) (*order.Order, error) {
	if !contains(adminPaymentStatuses, status) {
		return nil, internal.NewValidationError("Status pembayaran tidak valid", internal.ErrCodeInvalidStatus)
	}
	o, err := s.orders.UpdatePaymentStatus(id, status)
	if err != nil {
		return nil, order.ErrOrderNotFound
	}
	s.logger.Info("payment status updated by admin", "order_id", id, "status", status)
	return o, nil
}

func (s *Service) DeleteOrder(id string) error {
	if err := s.orders.Delete(id); err != nil {
		return order.ErrOrderNotFound
	}
	s.logger.Info("order deleted", "order_id", id)
	return nil
}

// BatchDeleteOrders removes orders older than the named window.
func (s *Service) BatchDeleteOrders(criteria string) (*BatchDeleteResult, error) {
	var cutoff time.Time
	switch criteria {
	case "week":
		cutoff = time.Now().AddDate(0, 0, -7)
	case "month":
		cutoff = time.Now().AddDate(0, 0, -30)
	default:
		return nil, internal.NewValidationError("Kriteria tidak valid, gunakan week atau month", internal.ErrCodeInvalidCriteria)
	}

	deleted, err := s.orders.DeleteCreatedBefore(cutoff)
	if err != nil {
		s.logger.Error("failed to batch delete orders", "criteria", criteria, "error", err)
		return nil, internal.NewInternalError("gagal menghapus pesanan", err)
	}

	s.logger.Info("orders batch deleted", "criteria", criteria, "deleted", deleted)
	return &BatchDeleteResult{Deleted: deleted}, nil
}

// GetDashboard aggregates the landing-page numbers directly from the
// store. Volumes here stay small enough that caching would only add a
// staleness bug surface.
func (s *Service) GetDashboard() (*DashboardStats, error) {
	totalOrders, err := s.orders.CountAll()
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}

	activeProducts, err := s.products.CountActive()
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayOrders, err := s.orders.CountCreatedSince(midnight)
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}

	revenue, err := s.orders.SumPaidAmount()
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}

	recent, err := s.orders.Recent(recentOrdersLimit)
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}
	recentViews := make([]order.OrderView, 0, len(recent))
	for _, o := range recent {
		recentViews = append(recentViews, order.NewOrderView(o))
	}

	paymentCounts, err := s.orders.CountByPaymentStatus()
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}
	sellerCounts, err := s.orders.CountBySellerStatus()
	if err != nil {
		return nil, internal.NewInternalError("gagal memuat dashboard", err)
	}

	return &DashboardStats{
		TotalOrders:        totalOrders,
		ActiveProducts:     activeProducts,
		TodayOrders:        todayOrders,
		Revenue:            revenue,
		RecentOrders:       recentViews,
		PaymentStatusCount: paymentCounts,
		SellerStatusCount:  sellerCounts,
	}, nil
}

func (s *Service) ListPaymentLogs(f PaymentLogFilter) ([]*order.PaymentLog, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	logs, total, err := s.orders.ListPaymentLogs(f)
	if err != nil {
		s.logger.Error("failed to list payment logs", "error", err)
		return nil, Pagination{}, internal.NewInternalError("gagal mengambil log pembayaran", err)
	}
	return logs, NewPagination(f.Page, f.Limit, total), nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
