package domain

const (
	AccountTypeUser     = "User"
	AccountTypeCreator  = "Creator"
	AccountTypeVCreator = "VCreator"
)

const (
	TxTypeEarned  = "Earned"
	TxTypeBonus   = "Bonus"
	TxTypeSpent   = "Spent"
	TxTypeRefund  = "Refund"
	TxTypeExpired = "Expired"
)

const (
	VaultTypeFile    = "file"
	VaultTypeText    = "text"
	VaultTypeQnA     = "qna"
	VaultTypePromise = "promise"
)

const (
	RedemptionPending   = "Pending"
	RedemptionFulfilled = "Fulfilled"
	RedemptionRejected  = "Rejected"
	RedemptionCancelled = "Cancelled"
)

const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

const (
	ProviderPayPal   = "paypal"
	ProviderRazorpay = "razorpay"
	ProviderStub     = "stub"
)

// Points awarded per currency unit donated: floor(amount * PointsEarnRate).
const PointsEarnRate = 0.1

// Earned/Bonus grants expire this long after creation; Pending redemptions
// older than this get swept.
const (
	PointExpiryDays      = 60
	RedemptionExpiryDays = 60
)

// Reason written on redemptions cancelled by the sweep.
const SweepCancelReason = "Automatically cancelled: creator did not respond within 60 days"

// ValidVaultType reports whether t is a recognised vault item type.
func ValidVaultType(t string) bool {
	switch t {
	case VaultTypeFile, VaultTypeText, VaultTypeQnA, VaultTypePromise:
		return true
	}
	return false
}

// InstantFulfil reports whether a vault item type is delivered at redemption
// time (nothing for the creator to do manually).
func InstantFulfil(t string) bool {
	return t == VaultTypeFile || t == VaultTypeText
}
