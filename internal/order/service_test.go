package order_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/gateway"
	"github.com/sobatmedia/smm-store/internal/order"
	"github.com/sobatmedia/smm-store/internal/product"
)

func TestOrder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Order Suite")
}

// Mock repository for testing
type mockOrderRepository struct {
	orders map[string]*order.Order

	appliedLogs     []*order.PaymentLog
	appliedStatuses map[string]string
	proofIDs        []string
	proofURL        string
	sessionSaves    int

	createError error
	applyError  error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders:          make(map[string]*order.Order),
		appliedStatuses: make(map[string]string),
	}
}

func (m *mockOrderRepository) Create(o *order.Order) error {
	if m.createError != nil {
		return m.createError
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepository) GetByID(id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return o, nil
}

func (m *mockOrderRepository) GetByPurchaseCode(code string) (*order.Order, error) {
	for _, o := range m.orders {
		if o.PurchaseCode == code {
			return o, nil
		}
	}
	return nil, errors.New("order not found")
}

func (m *mockOrderRepository) ListByGroupID(groupID string) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range m.orders {
		if o.MidtransOrderID != nil && *o.MidtransOrderID == groupID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) SavePaymentSession(orderID string, sess order.SessionUpdate) (*order.Order, error) {
	m.sessionSaves++
	o, ok := m.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	// Conditional claim: first writer wins.
	if o.SnapToken == nil {
		token := sess.Token
		url := sess.RedirectURL
		kind := sess.RefKind
		o.SnapToken = &token
		o.SnapRedirectURL = &url
		o.PaymentRefKind = &kind
		o.StatusPayment = order.PaymentStatusWaitingPayment
		if o.MidtransOrderID == nil {
			id := orderID
			o.MidtransOrderID = &id
		}
	}
	return o, nil
}

func (m *mockOrderRepository) SaveGroupPaymentSession(groupID string, sess order.SessionUpdate) (*order.Order, error) {
	m.sessionSaves++
	orders, _ := m.ListByGroupID(groupID)
	if len(orders) == 0 {
		return nil, errors.New("order not found")
	}
	for _, o := range orders {
		if o.SnapToken == nil {
			token := sess.Token
			url := sess.RedirectURL
			kind := sess.RefKind
			o.SnapToken = &token
			o.SnapRedirectURL = &url
			o.PaymentRefKind = &kind
			o.StatusPayment = order.PaymentStatusWaitingPayment
		}
	}
	return orders[0], nil
}

func (m *mockOrderRepository) UpdatePaymentStatus(orderID, status string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return errors.New("order not found")
	}
	o.StatusPayment = status
	m.appliedStatuses[orderID] = status
	return nil
}

func (m *mockOrderRepository) ApplyWebhook(log *order.PaymentLog, orderID, status string) error {
	if m.applyError != nil {
		return m.applyError
	}
	o, ok := m.orders[orderID]
	if !ok {
		return errors.New("order not found")
	}
	m.appliedLogs = append(m.appliedLogs, log)
	o.StatusPayment = status
	m.appliedStatuses[orderID] = status
	return nil
}

func (m *mockOrderRepository) MarkManualProof(orderIDs []string, proofURL string) (int64, error) {
	m.proofIDs = orderIDs
	m.proofURL = proofURL
	for _, id := range orderIDs {
		if o, ok := m.orders[id]; ok {
			token := order.SnapTokenManual
			kind := order.RefKindManualProof
			url := proofURL
			o.SnapToken = &token
			o.PaymentRefKind = &kind
			o.SnapRedirectURL = &url
			o.StatusPayment = order.PaymentStatusWaitingPayment
		}
	}
	return int64(len(orderIDs)), nil
}

// Mock product store for testing
type mockProductStore struct {
	products map[string]*product.Product
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{products: make(map[string]*product.Product)}
}

func (m *mockProductStore) GetActiveByID(id string) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok || !p.IsActive {
		return nil, errors.New("product not found")
	}
	return p, nil
}

// Mock payment gateway for testing
type mockGateway struct {
	session      *gateway.Session
	sessionError error
	sessionCalls int
	lastOrder    gateway.OrderInfo
	lastItems    []gateway.ItemInfo

	notification *gateway.Notification
	verifyError  error

	status      *gateway.TransactionStatus
	statusError error
}

func (m *mockGateway) CreateSession(_ context.Context, ord gateway.OrderInfo, items []gateway.ItemInfo) (*gateway.Session, error) {
	m.sessionCalls++
	m.lastOrder = ord
	m.lastItems = items
	if m.sessionError != nil {
		return nil, m.sessionError
	}
	return m.session, nil
}

func (m *mockGateway) VerifyNotification(_ context.Context, _ []byte) (*gateway.Notification, error) {
	if m.verifyError != nil {
		return nil, m.verifyError
	}
	return m.notification, nil
}

func (m *mockGateway) GetStatus(_ context.Context, orderID string) (*gateway.TransactionStatus, error) {
	if m.statusError != nil {
		return nil, m.statusError
	}
	s := *m.status
	s.OrderID = orderID
	return &s, nil
}

// Mock uploader for testing
type mockUploader struct {
	lastKey         string
	lastContentType string
	uploadError     error
}

func (m *mockUploader) Upload(_ context.Context, key, contentType string, _ io.Reader) (string, error) {
	if m.uploadError != nil {
		return "", m.uploadError
	}
	m.lastKey = key
	m.lastContentType = contentType
	return "https://cdn.example.com/" + key, nil
}

var _ = Describe("OrderService", func() {
	var (
		service  *order.Service
		repo     *mockOrderRepository
		products *mockProductStore
		gw       *mockGateway
		uploader *mockUploader
		ctx      context.Context
	)

	activeProduct := func() *product.Product {
		return &product.Product{
			ID:       "prod-1",
			Name:     "1000 Followers Instagram",
			Platform: "instagram",
			Price:    25000,
			IsActive: true,
		}
	}

	BeforeEach(func() {
		repo = newMockOrderRepository()
		products = newMockProductStore()
		products.products["prod-1"] = activeProduct()
		gw = &mockGateway{
			session: &gateway.Session{Token: "snap-token-1", RedirectURL: "https://pay.example.com/1"},
			status:  &gateway.TransactionStatus{TransactionStatus: "settlement", FraudStatus: ""},
		}
		uploader = &mockUploader{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = order.NewService(repo, products, gw, uploader, logger)
		ctx = context.Background()
	})

	Describe("CreateOrder", func() {
		It("creates an order with snapshotted amount and generated code", func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "+62 812-3456-789",
				Quantity:   3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.PurchaseCode).To(MatchRegexp(`^SM-[A-Z0-9]{8}$`))
			Expect(view.Amount).To(Equal(int64(75000)))
			Expect(view.StatusPayment).To(Equal(order.PaymentStatusPending))
			Expect(view.StatusSeller).To(Equal(order.SellerStatusPending))

			stored, err := repo.GetByID(view.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.BuyerPhone).To(Equal("08123456789"))
		})

		It("keeps the amount stable when the price changes later", func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   2,
			})
			Expect(err).NotTo(HaveOccurred())

			products.products["prod-1"].Price = 99000

			stored, _ := repo.GetByID(view.ID)
			Expect(stored.Amount).To(Equal(int64(50000)))
		})

		It("rejects an invalid phone number", func() {
			_, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "12345",
				Quantity:   1,
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a zero quantity", func() {
			_, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   0,
			})
			Expect(err).To(HaveOccurred())
		})

		It("returns not found for an inactive product", func() {
			products.products["prod-1"].IsActive = false
			_, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   1,
			})
			Expect(err).To(Equal(product.ErrProductNotFound))
		})

		It("stores a supplied group id", func() {
			groupID := order.GenerateGroupID()
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:          "prod-1",
				BuyerPhone:         "08123456789",
				Quantity:           1,
				TransactionGroupID: groupID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.GroupID).NotTo(BeNil())
			Expect(*view.GroupID).To(Equal(groupID))
		})

		It("rejects a malformed group id", func() {
			_, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:          "prod-1",
				BuyerPhone:         "08123456789",
				Quantity:           1,
				TransactionGroupID: "not-a-group",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetOrderStatus", func() {
		It("finds a single order by purchase code, case-insensitively", func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.GetOrderStatus(strings.ToLower(view.PurchaseCode))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Single).NotTo(BeNil())
			Expect(result.Single.PurchaseCode).To(Equal(view.PurchaseCode))
			Expect(result.Group).To(BeEmpty())
		})

		It("returns every order of a group", func() {
			groupID := order.GenerateGroupID()
			for i := 0; i < 3; i++ {
				_, err := service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-1",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := service.GetOrderStatus(groupID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Single).To(BeNil())
			Expect(result.Group).To(HaveLen(3))
		})

		It("accepts a lowercase group id", func() {
			groupID := order.GenerateGroupID()
			for i := 0; i < 2; i++ {
				_, err := service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-1",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := service.GetOrderStatus(strings.ToLower(groupID))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Group).To(HaveLen(2))
		})

		It("returns not found for an unknown code", func() {
			_, err := service.GetOrderStatus("SM-DEADBEEF")
			Expect(err).To(Equal(order.ErrOrderNotFound))

			_, err = service.GetOrderStatus(order.GenerateGroupID())
			Expect(err).To(Equal(order.ErrOrderNotFound))
		})
	})

	Describe("CreatePayment", func() {
		var code string

		BeforeEach(func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   2,
			})
			Expect(err).NotTo(HaveOccurred())
			code = view.PurchaseCode
		})

		It("opens a session and moves the order to waiting_payment", func() {
			result, err := service.CreatePayment(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.SnapToken).To(Equal("snap-token-1"))
			Expect(result.RedirectURL).To(Equal("https://pay.example.com/1"))

			stored, _ := repo.GetByPurchaseCode(code)
			Expect(stored.StatusPayment).To(Equal(order.PaymentStatusWaitingPayment))
			Expect(*stored.PaymentRefKind).To(Equal(order.RefKindGateway))
			Expect(*stored.MidtransOrderID).To(Equal(stored.ID))
		})

		It("sends the order amount and buyer details to the gateway", func() {
			_, err := service.CreatePayment(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.lastOrder.Amount).To(Equal(int64(50000)))
			Expect(gw.lastOrder.BuyerPhone).To(Equal("08123456789"))
			Expect(gw.lastItems).To(HaveLen(1))
			Expect(gw.lastItems[0].Name).To(Equal("1000 Followers Instagram"))
			Expect(gw.lastItems[0].Qty).To(Equal(2))
		})

		It("returns the existing token without a second gateway call", func() {
			first, err := service.CreatePayment(ctx, code)
			Expect(err).NotTo(HaveOccurred())

			second, err := service.CreatePayment(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.SnapToken).To(Equal(first.SnapToken))
			Expect(gw.sessionCalls).To(Equal(1))
		})

		Context("for a grouped order", func() {
			var (
				groupID   string
				cheap     *order.OrderView
				expensive *order.OrderView
			)

			BeforeEach(func() {
				products.products["prod-2"] = &product.Product{
					ID:       "prod-2",
					Name:     "100K Views TikTok",
					Platform: "tiktok",
					Price:    900000,
					IsActive: true,
				}

				groupID = order.GenerateGroupID()
				var err error
				cheap, err = service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-1",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
				expensive, err = service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-2",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("charges one session the batch total with a line item per order", func() {
				result, err := service.CreatePayment(ctx, cheap.PurchaseCode)
				Expect(err).NotTo(HaveOccurred())

				Expect(gw.lastOrder.ID).To(Equal(groupID))
				Expect(gw.lastOrder.Amount).To(Equal(int64(925000)))
				Expect(gw.lastItems).To(HaveLen(2))

				for _, v := range []*order.OrderView{cheap, expensive} {
					stored, _ := repo.GetByID(v.ID)
					Expect(*stored.SnapToken).To(Equal(result.SnapToken))
					Expect(stored.StatusPayment).To(Equal(order.PaymentStatusWaitingPayment))
					Expect(*stored.MidtransOrderID).To(Equal(groupID))
				}
			})

			It("reuses the batch session from any sibling's code", func() {
				first, err := service.CreatePayment(ctx, cheap.PurchaseCode)
				Expect(err).NotTo(HaveOccurred())

				second, err := service.CreatePayment(ctx, expensive.PurchaseCode)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.SnapToken).To(Equal(first.SnapToken))
				Expect(gw.sessionCalls).To(Equal(1))
			})

			It("refuses a batch session while a sibling is already paid", func() {
				stored, _ := repo.GetByID(expensive.ID)
				stored.StatusPayment = order.PaymentStatusPaid

				_, err := service.CreatePayment(ctx, cheap.PurchaseCode)
				Expect(err).To(Equal(order.ErrOrderAlreadyPaid))
				Expect(gw.sessionCalls).To(BeZero())
			})
		})

		It("rejects a paid order with a conflict", func() {
			stored, _ := repo.GetByPurchaseCode(code)
			stored.StatusPayment = order.PaymentStatusPaid

			_, err := service.CreatePayment(ctx, code)
			Expect(err).To(Equal(order.ErrOrderAlreadyPaid))
			Expect(gw.sessionCalls).To(BeZero())
		})

		It("rejects an expired order with a conflict", func() {
			stored, _ := repo.GetByPurchaseCode(code)
			stored.StatusPayment = order.PaymentStatusExpire

			_, err := service.CreatePayment(ctx, code)
			Expect(err).To(Equal(order.ErrOrderExpired))
		})

		It("propagates gateway failures", func() {
			gw.sessionError = internal.NewExternalError("gateway down", errors.New("boom"))
			_, err := service.CreatePayment(ctx, code)
			Expect(err).To(HaveOccurred())

			stored, _ := repo.GetByPurchaseCode(code)
			Expect(stored.SnapToken).To(BeNil())
		})
	})

	Describe("SubmitPaymentProof", func() {
		It("uploads the proof and marks a single order", func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.SubmitPaymentProof(ctx, view.PurchaseCode, "bukti.jpg", "image/jpeg", strings.NewReader("fake-image"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OrdersUpdated).To(Equal(int64(1)))
			Expect(result.ProofURL).To(HavePrefix("https://cdn.example.com/proofs/"))
			Expect(uploader.lastKey).To(HaveSuffix(".jpg"))

			stored, _ := repo.GetByID(view.ID)
			Expect(*stored.SnapToken).To(Equal(order.SnapTokenManual))
			Expect(*stored.PaymentRefKind).To(Equal(order.RefKindManualProof))
			Expect(*stored.SnapRedirectURL).To(Equal(result.ProofURL))
			Expect(stored.StatusPayment).To(Equal(order.PaymentStatusWaitingPayment))
		})

		It("marks every order of a group with one upload", func() {
			groupID := order.GenerateGroupID()
			for i := 0; i < 2; i++ {
				_, err := service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-1",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := service.SubmitPaymentProof(ctx, groupID, "bukti.png", "image/png", strings.NewReader("fake-image"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OrdersUpdated).To(Equal(int64(2)))
			Expect(repo.proofIDs).To(HaveLen(2))
		})

		It("returns not found for an unknown code", func() {
			_, err := service.SubmitPaymentProof(ctx, "SM-DEADBEEF", "bukti.jpg", "image/jpeg", strings.NewReader("x"))
			Expect(err).To(Equal(order.ErrOrderNotFound))
		})
	})

	Describe("HandleWebhook", func() {
		var orderID string

		BeforeEach(func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())
			orderID = view.ID
		})

		It("logs and applies a settlement", func() {
			gw.notification = &gateway.Notification{
				OrderID:           orderID,
				TransactionID:     "mid-tx-1",
				TransactionStatus: "settlement",
				PaymentType:       "qris",
			}

			service.HandleWebhook(ctx, []byte(`{"order_id":"`+orderID+`"}`))

			Expect(repo.appliedLogs).To(HaveLen(1))
			Expect(repo.appliedLogs[0].TransactionStatus).To(Equal("settlement"))
			Expect(*repo.appliedLogs[0].TransactionID).To(Equal("mid-tx-1"))
			Expect(repo.appliedStatuses[orderID]).To(Equal(order.PaymentStatusPaid))
		})

		It("applies a group notification to every order", func() {
			groupID := order.GenerateGroupID()
			var ids []string
			for i := 0; i < 3; i++ {
				view, err := service.CreateOrder(order.CreateOrderDTO{
					ProductID:          "prod-1",
					BuyerPhone:         "08123456789",
					Quantity:           1,
					TransactionGroupID: groupID,
				})
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, view.ID)
			}

			gw.notification = &gateway.Notification{
				OrderID:           groupID,
				TransactionStatus: "settlement",
			}

			service.HandleWebhook(ctx, []byte(`{"order_id":"`+groupID+`"}`))

			Expect(repo.appliedLogs).To(HaveLen(3))
			for _, id := range ids {
				Expect(repo.appliedStatuses[id]).To(Equal(order.PaymentStatusPaid))
			}
		})

		It("swallows verification failures", func() {
			gw.verifyError = errors.New("bad signature")
			service.HandleWebhook(ctx, []byte(`{}`))
			Expect(repo.appliedLogs).To(BeEmpty())
		})

		It("swallows notifications for unknown orders", func() {
			gw.notification = &gateway.Notification{
				OrderID:           "no-such-order",
				TransactionStatus: "settlement",
			}
			service.HandleWebhook(ctx, []byte(`{"order_id":"no-such-order"}`))
			Expect(repo.appliedLogs).To(BeEmpty())
		})

		It("maps a challenged capture to deny", func() {
			gw.notification = &gateway.Notification{
				OrderID:           orderID,
				TransactionStatus: "capture",
				FraudStatus:       "challenge",
			}
			service.HandleWebhook(ctx, []byte(`{"order_id":"`+orderID+`"}`))
			Expect(repo.appliedStatuses[orderID]).To(Equal(order.PaymentStatusDeny))
		})
	})

	Describe("RefreshPaymentStatus", func() {
		It("persists the freshly mapped status", func() {
			view, err := service.CreateOrder(order.CreateOrderDTO{
				ProductID:  "prod-1",
				BuyerPhone: "08123456789",
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			gw.status = &gateway.TransactionStatus{TransactionStatus: "settlement"}

			refreshed, err := service.RefreshPaymentStatus(ctx, view.PurchaseCode)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.StatusPayment).To(Equal(order.PaymentStatusPaid))
			Expect(repo.appliedStatuses[view.ID]).To(Equal(order.PaymentStatusPaid))
		})

		It("returns not found for an unknown code", func() {
			_, err := service.RefreshPaymentStatus(ctx, "SM-DEADBEEF")
			Expect(err).To(Equal(order.ErrOrderNotFound))
		})
	})
})
