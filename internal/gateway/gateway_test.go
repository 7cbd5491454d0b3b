package gateway

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Suite")
}

var _ = Describe("NewGateway", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("selects the dummy when no server key is configured", func() {
		gw := NewGateway(internal.MidtransConfig{}, "https://toko.example.com", logger)
		Expect(gw).To(BeAssignableToTypeOf(&DummyGateway{}))
	})

	It("selects the dummy for placeholder keys", func() {
		gw := NewGateway(internal.MidtransConfig{ServerKey: "your_server_key_here"}, "https://toko.example.com", logger)
		Expect(gw).To(BeAssignableToTypeOf(&DummyGateway{}))

		gw = NewGateway(internal.MidtransConfig{ServerKey: "SB-Mid-server-xxxx"}, "https://toko.example.com", logger)
		Expect(gw).To(BeAssignableToTypeOf(&DummyGateway{}))
	})

	It("selects midtrans for a real key", func() {
		cfg := internal.MidtransConfig{ServerKey: "SB-Mid-server-abc123def456"}
		gw := NewGateway(cfg, "https://toko.example.com", logger)
		Expect(gw).To(BeAssignableToTypeOf(&MidtransGateway{}))
	})
})

var _ = Describe("DummyGateway", func() {
	var (
		gw  *DummyGateway
		ctx context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		gw = NewDummyGateway("https://toko.example.com", logger)
		ctx = context.Background()
	})

	Describe("CreateSession", func() {
		It("issues a unique token and a check-order redirect", func() {
			ord := OrderInfo{ID: "ord-1", PurchaseCode: "SM-AAAA1111", Amount: 50000}

			first, err := gw.CreateSession(ctx, ord, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Token).To(HavePrefix("DUMMY-TOKEN-"))
			Expect(first.RedirectURL).To(Equal("https://toko.example.com/cek-pesanan?code=SM-AAAA1111"))

			second, err := gw.CreateSession(ctx, ord, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Token).NotTo(Equal(first.Token))
		})
	})

	Describe("VerifyNotification", func() {
		It("defaults missing fields to a settlement", func() {
			n, err := gw.VerifyNotification(ctx, []byte(`{"order_id":"ord-1"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.OrderID).To(Equal("ord-1"))
			Expect(n.TransactionStatus).To(Equal("settlement"))
			Expect(n.PaymentType).To(Equal("dummy"))
		})

		It("keeps explicit status fields", func() {
			n, err := gw.VerifyNotification(ctx, []byte(`{"order_id":"ord-1","transaction_status":"expire"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.TransactionStatus).To(Equal("expire"))
		})

		It("fills the fraud status for a capture", func() {
			n, err := gw.VerifyNotification(ctx, []byte(`{"order_id":"ord-1","transaction_status":"capture"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(n.FraudStatus).To(Equal("accept"))
		})

		It("rejects a payload without an order id", func() {
			_, err := gw.VerifyNotification(ctx, []byte(`{}`))
			Expect(err).To(HaveOccurred())
		})

		It("rejects a malformed payload", func() {
			_, err := gw.VerifyNotification(ctx, []byte(`not json`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetStatus", func() {
		It("always reports a settlement", func() {
			s, err := gw.GetStatus(ctx, "ord-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.OrderID).To(Equal("ord-1"))
			Expect(s.TransactionStatus).To(Equal("settlement"))
			Expect(s.FraudStatus).To(Equal("accept"))
		})
	})
})

var _ = Describe("truncate", func() {
	It("leaves short strings alone", func() {
		Expect(truncate("Followers", 50)).To(Equal("Followers"))
	})

	It("cuts overlong strings to the limit", func() {
		long := "Paket 10000 Followers Instagram Indonesia Aktif Permanen Garansi"
		Expect(truncate(long, 50)).To(HaveLen(50))
	})
})
