package order_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal/order"
)

var _ = Describe("Phone normalization", func() {
	DescribeTable("NormalizePhone",
		func(in, want string) {
			Expect(order.NormalizePhone(in)).To(Equal(want))
		},
		Entry("+62 prefix", "+628123456789", "08123456789"),
		Entry("62 prefix", "628123456789", "08123456789"),
		Entry("already local", "08123456789", "08123456789"),
		Entry("spaces stripped", "0812 3456 789", "08123456789"),
		Entry("dashes stripped", "0812-3456-789", "08123456789"),
		Entry("mixed separators with country code", "+62 812-3456-789", "08123456789"),
	)

	DescribeTable("IsValidPhone",
		func(in string, want bool) {
			Expect(order.IsValidPhone(in)).To(Equal(want))
		},
		Entry("valid local", "081234567890", true),
		Entry("valid +62", "+6281234567890", true),
		Entry("valid 62", "6281234567890", true),
		Entry("valid with separators", "0812-3456-7890", true),
		Entry("second digit cannot be zero", "080234567890", false),
		Entry("too short", "0812345", false),
		Entry("too long", "0812345678901234", false),
		Entry("not starting with 8", "071234567890", false),
		Entry("letters", "0812abc45678", false),
		Entry("empty", "", false),
	)

	It("normalized valid numbers are all in local form", func() {
		for _, in := range []string{"+628123456789", "628123456789", "0812 3456 789"} {
			Expect(order.IsValidPhone(in)).To(BeTrue())
			Expect(order.NormalizePhone(in)).To(HavePrefix("08"))
		}
	})
})
