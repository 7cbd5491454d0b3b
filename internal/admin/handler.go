package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/product"
	"github.com/sobatmedia/smm-store/internal/transport"
)

type contextKey string

const adminContextKey contextKey = "admin"

// AdminFromContext returns the authenticated admin set by AuthMiddleware.
func AdminFromContext(ctx context.Context) (*AdminUser, bool) {
	a, ok := ctx.Value(adminContextKey).(*AdminUser)
	return a, ok
}

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// AuthMiddleware authenticates the bearer token and loads the admin into
// the request context. Deactivated accounts are cut off here even when
// their token is still within its lifetime.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.ExtractTokenFromHeader(r)
		if tokenString == "" {
			h.WriteError(w, http.StatusUnauthorized, "Token tidak ditemukan")
			return
		}

		claims, err := h.service.ValidateToken(tokenString)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		a, err := h.service.GetAdmin(claims.Subject)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "Token tidak valid")
			return
		}
		if !a.IsActive {
			h.HandleServiceError(w, internal.ErrAccountInactive)
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SuperadminOnly gates an endpoint to the superadmin role.
func (h *Handler) SuperadminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := AdminFromContext(r.Context())
		if !ok || a.Role != RoleSuperadmin {
			h.HandleServiceError(w, internal.ErrSuperadminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login godoc
// @Summary Back-office login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body LoginDTO true "Credentials"
// @Success 200 {object} transport.Envelope
// @Failure 401 {object} transport.Envelope
// @Router /api/admin/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	result, err := h.service.Login(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Login berhasil", result)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	a, ok := AdminFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Token tidak valid")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", NewAdminView(a))
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var dto CreateAdminDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	view, err := h.service.CreateAdmin(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Akun admin dibuat", view)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboard()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", stats)
}

// --- products ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, pagination, err := h.service.ListProducts(product.AdminListFilter{
		Platform: q.Get("platform"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePage(w, products, pagination)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto product.CreateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	p, err := h.service.CreateProduct(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Produk dibuat", p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var dto product.UpdateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	p, err := h.service.UpdateProduct(chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Produk diperbarui", p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Produk dinonaktifkan", nil)
}

// --- orders ---

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	views, pagination, err := h.service.ListOrders(OrderListFilter{
		StatusPayment: q.Get("status_payment"),
		StatusSeller:  q.Get("status_seller"),
		Search:        q.Get("search"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePage(w, views, pagination)
}

func (h *Handler) GetOrderDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetOrderDetail(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", detail)
}

func (h *Handler) UpdateSellerStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	o, err := h.service.UpdateSellerStatus(chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Status seller diperbarui", o)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	o, err := h.service.UpdatePaymentStatus(chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Status pembayaran diperbarui", o)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Pesanan dihapus", nil)
}

func (h *Handler) BatchDeleteOrders(w http.ResponseWriter, r *http.Request) {
	var dto BatchDeleteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	result, err := h.service.BatchDeleteOrders(dto.Criteria)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Pesanan lama dihapus", result)
}

func (h *Handler) ListPaymentLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	logs, pagination, err := h.service.ListPaymentLogs(PaymentLogFilter{
		OrderID: q.Get("order_id"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePage(w, logs, pagination)
}
