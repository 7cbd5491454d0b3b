package order_test

import (
	"bytes"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal/gateway"
	"github.com/sobatmedia/smm-store/internal/order"
	"github.com/sobatmedia/smm-store/internal/product"
)

var _ = Describe("OrderHandler", func() {
	var (
		handler *order.Handler
		repo    *mockOrderRepository
		code    string
	)

	BeforeEach(func() {
		repo = newMockOrderRepository()
		products := newMockProductStore()
		products.products["prod-1"] = &product.Product{
			ID:       "prod-1",
			Name:     "1000 Followers Instagram",
			Platform: "instagram",
			Price:    25000,
			IsActive: true,
		}
		gw := &mockGateway{session: &gateway.Session{Token: "snap-token-1"}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := order.NewService(repo, products, gw, &mockUploader{}, logger)
		handler = order.NewHandler(service, logger)

		view, err := service.CreateOrder(order.CreateOrderDTO{
			ProductID:  "prod-1",
			BuyerPhone: "08123456789",
			Quantity:   1,
		})
		Expect(err).NotTo(HaveOccurred())
		code = view.PurchaseCode
	})

	proofRequest := func(field, value string) *http.Request {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if field != "" {
			Expect(w.WriteField(field, value)).To(Succeed())
		}
		fw, err := w.CreateFormFile("proof", "bukti.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = fw.Write([]byte("fake-image"))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/order/submit-proof", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req
	}

	Describe("SubmitPaymentProof", func() {
		It("reads the code from the purchase_code field", func() {
			rec := httptest.NewRecorder()
			handler.SubmitPaymentProof(rec, proofRequest("purchase_code", code))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(repo.proofIDs).To(HaveLen(1))
		})

		It("still accepts the older code field", func() {
			rec := httptest.NewRecorder()
			handler.SubmitPaymentProof(rec, proofRequest("code", code))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(repo.proofIDs).To(HaveLen(1))
		})

		It("rejects a form without any code", func() {
			rec := httptest.NewRecorder()
			handler.SubmitPaymentProof(rec, proofRequest("", ""))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
