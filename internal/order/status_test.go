package order_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal/order"
)

var _ = Describe("MapPaymentStatus", func() {
	DescribeTable("maps gateway transaction statuses",
		func(transactionStatus, fraudStatus, expected string) {
			Expect(order.MapPaymentStatus(transactionStatus, fraudStatus)).To(Equal(expected))
		},
		Entry("capture accepted by fraud screening", "capture", "accept", order.PaymentStatusPaid),
		Entry("capture challenged by fraud screening", "capture", "challenge", order.PaymentStatusDeny),
		Entry("capture with empty fraud status", "capture", "", order.PaymentStatusDeny),
		Entry("settlement", "settlement", "", order.PaymentStatusPaid),
		Entry("pending", "pending", "", order.PaymentStatusWaitingPayment),
		Entry("deny", "deny", "", order.PaymentStatusDeny),
		Entry("cancel", "cancel", "", order.PaymentStatusDeny),
		Entry("failure", "failure", "", order.PaymentStatusDeny),
		Entry("expire", "expire", "", order.PaymentStatusExpire),
		Entry("refund", "refund", "", order.PaymentStatusRefund),
		Entry("partial refund", "partial_refund", "", order.PaymentStatusRefund),
	)

	It("falls back to pending for statuses it does not know", func() {
		Expect(order.MapPaymentStatus("authorize", "")).To(Equal(order.PaymentStatusPending))
		Expect(order.MapPaymentStatus("", "")).To(Equal(order.PaymentStatusPending))
		Expect(order.MapPaymentStatus("chargeback", "accept")).To(Equal(order.PaymentStatusPending))
	})

	It("ignores fraud status outside capture", func() {
		Expect(order.MapPaymentStatus("settlement", "challenge")).To(Equal(order.PaymentStatusPaid))
		Expect(order.MapPaymentStatus("pending", "deny")).To(Equal(order.PaymentStatusWaitingPayment))
	})
})
