package order

// MapPaymentStatus translates a gateway transaction status into the order's
// payment status. Capture is only money in hand when fraud screening
// accepted it.
func MapPaymentStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return PaymentStatusPaid
		}
		return PaymentStatusDeny
	case "settlement":
		return PaymentStatusPaid
	case "pending":
		return PaymentStatusWaitingPayment
	case "deny", "cancel", "failure":
		return PaymentStatusDeny
	case "expire":
		return PaymentStatusExpire
	case "refund", "partial_refund":
		return PaymentStatusRefund
	default:
		// Statuses this build does not know stay pending rather than
		// guessing a terminal state.
		return PaymentStatusPending
	}
}
