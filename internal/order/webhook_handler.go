package order

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/transport"
)

// The gateway expects a prompt acknowledgement; processing is bounded so a
// slow status re-check cannot hold the callback open.
const webhookTimeout = 20 * time.Second

// WebhookHandler receives payment gateway callbacks. It is deliberately
// separate from the storefront handler: these endpoints are called by the
// gateway, not by browsers.
type WebhookHandler struct {
	*transport.BaseHandler
	service *Service
}

func NewWebhookHandler(service *Service, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// HandleNotification godoc
// @Summary Payment gateway webhook
// @Tags webhook
// @Accept json
// @Produce json
// @Success 200 {object} transport.Envelope
// @Router /api/midtrans/webhook [post]
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		// Still 200: the gateway must not retry a payload we cannot read.
		h.Logger.Warn("failed to read webhook body", "error", err)
		h.WriteSuccess(w, http.StatusOK, "OK", nil)
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), webhookTimeout)
	defer cancel()
	h.service.HandleWebhook(ctx, payload)

	// Always 200. Processing failures are logged server-side; a non-200
	// only triggers gateway retries that would hit the same failure.
	h.WriteSuccess(w, http.StatusOK, "OK", nil)
}

// GetTransactionStatus godoc
// @Summary Raw gateway transaction status
// @Tags webhook
// @Produce json
// @Param orderId path string true "Gateway order id"
// @Success 200 {object} transport.Envelope
// @Router /api/midtrans/status/{orderId} [get]
func (h *WebhookHandler) GetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	status, err := h.service.GetTransactionStatus(r.Context(), orderID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "", status)
}
