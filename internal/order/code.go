package order

import (
	"strings"

	"github.com/google/uuid"
)

const (
	purchaseCodePrefix = "SM-"
	groupIDPrefix      = "GRP-"
)

// GeneratePurchaseCode returns a short customer-facing code like SM-3F0A91BC.
// Codes are random, not sequential, so they leak nothing about order volume.
func GeneratePurchaseCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return purchaseCodePrefix + raw[:8]
}

// GenerateGroupID returns an id shared by the orders of one batch checkout,
// like GRP-9C2E41A07B3D. The prefix keeps group ids distinguishable from
// order ids and purchase codes everywhere they travel, including gateway
// order_id fields in webhooks.
func GenerateGroupID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return groupIDPrefix + raw[:12]
}

// IsGroupID reports whether code identifies a batch rather than one order.
func IsGroupID(code string) bool {
	return strings.HasPrefix(code, groupIDPrefix)
}

// IsPurchaseCode reports whether code looks like a customer purchase code.
func IsPurchaseCode(code string) bool {
	return strings.HasPrefix(strings.ToUpper(code), purchaseCodePrefix)
}
