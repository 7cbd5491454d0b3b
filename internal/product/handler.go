package product

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/sobatmedia/smm-store/internal/transport"
)

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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/product/{id}", h.GetProduct)
	r.Get("/platforms", h.Platforms)
	r.Get("/platforms/{platform}/sub-platforms", h.SubPlatforms)
}

// ListProducts godoc
// @Summary List active products
// @Tags products
// @Produce json
// @Param platform query string false "Filter by platform"
// @Param sub_platform query string false "Filter by sub platform"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort_by query string false "Sort column (created_at, price, name)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} transport.Envelope
// @Router /api/products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := ListFilter{
		Platform:    q.Get("platform"),
		SubPlatform: q.Get("sub_platform"),
		Page:        page,
		Limit:       limit,
		SortBy:      q.Get("sort_by"),
		Order:       q.Get("order"),
	}

	products, pagination, err := h.service.ListProducts(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WritePage(w, products, pagination)
}

// GetProduct godoc
// @Summary Get one active product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Router /api/product/{id} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetProduct(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", p)
}

func (h *Handler) Platforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.service.Platforms()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", platforms)
}

func (h *Handler) SubPlatforms(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.SubPlatforms(chi.URLParam(r, "platform"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "", subs)
}
