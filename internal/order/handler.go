package order

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/sobatmedia/smm-store/internal/transport"
)

// Proof uploads top out well under this; anything larger is not a receipt.
const maxProofUploadBytes = 5 << 20

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

// CreateOrder godoc
// @Summary Create a new order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderDTO true "Order data"
// @Success 201 {object} transport.Envelope
// @Failure 400 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Router /api/order/create [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var dto CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}

	view, err := h.service.CreateOrder(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Pesanan berhasil dibuat", view)
}

// GetOrderStatus godoc
// @Summary Look up an order by purchase code or group id
// @Tags orders
// @Produce json
// @Param code path string true "Purchase code (SM-...) or group id (GRP-...)"
// @Success 200 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Router /api/order/status/{code} [get]
func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	result, err := h.service.GetOrderStatus(code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", result.Payload())
}

// CreatePayment godoc
// @Summary Open a checkout session for an order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body PayOrderDTO true "Purchase code"
// @Success 200 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Failure 409 {object} transport.Envelope
// @Router /api/order/pay [post]
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var dto PayOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format request tidak valid")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.service.CreatePayment(r.Context(), dto.PurchaseCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Sesi pembayaran siap", result)
}

// SubmitPaymentProof godoc
// @Summary Submit a manual transfer proof image
// @Tags orders
// @Accept multipart/form-data
// @Produce json
// @Param purchase_code formData string true "Purchase code or group id"
// @Param proof formData file true "Proof image"
// @Success 200 {object} transport.Envelope
// @Failure 400 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Router /api/order/submit-proof [post]
func (h *Handler) SubmitPaymentProof(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Format upload tidak valid")
		return
	}

	code := r.FormValue("purchase_code")
	if code == "" {
		// older storefront builds posted the shorter field name
		code = r.FormValue("code")
	}
	if code == "" {
		h.WriteError(w, http.StatusBadRequest, "Kode pesanan wajib diisi")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Berkas bukti pembayaran wajib diunggah")
		return
	}
	defer file.Close()

	result, err := h.service.SubmitPaymentProof(
		r.Context(), code, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Bukti pembayaran diterima", result)
}

// RefreshPaymentStatus godoc
// @Summary Re-check payment status at the gateway
// @Tags orders
// @Produce json
// @Param purchaseCode path string true "Purchase code"
// @Success 200 {object} transport.Envelope
// @Failure 404 {object} transport.Envelope
// @Router /api/order/{purchaseCode}/refresh-status [post]
func (h *Handler) RefreshPaymentStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "purchaseCode")

	view, err := h.service.RefreshPaymentStatus(r.Context(), code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Status pembayaran diperbarui", view)
}
