package order_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal/order"
)

var _ = Describe("Purchase codes and group ids", func() {
	Describe("GeneratePurchaseCode", func() {
		It("matches the SM- prefix and length", func() {
			code := order.GeneratePurchaseCode()
			Expect(code).To(MatchRegexp(`^SM-[A-Z0-9]{8}$`))
		})

		It("generates distinct codes", func() {
			seen := make(map[string]bool)
			for i := 0; i < 100; i++ {
				code := order.GeneratePurchaseCode()
				Expect(seen[code]).To(BeFalse(), "duplicate code %s", code)
				seen[code] = true
			}
		})
	})

	Describe("GenerateGroupID", func() {
		It("matches the GRP- prefix and length", func() {
			id := order.GenerateGroupID()
			Expect(id).To(MatchRegexp(`^GRP-[A-F0-9]{12}$`))
		})
	})

	Describe("IsGroupID", func() {
		It("distinguishes group ids from purchase codes and order ids", func() {
			Expect(order.IsGroupID(order.GenerateGroupID())).To(BeTrue())
			Expect(order.IsGroupID(order.GeneratePurchaseCode())).To(BeFalse())
			Expect(order.IsGroupID("550e8400-e29b-41d4-a716-446655440000")).To(BeFalse())
			Expect(order.IsGroupID("")).To(BeFalse())
		})
	})
})
