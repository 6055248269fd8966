package types

type PaymentProvider string

const (
	PaymentProviderMercadoPago PaymentProvider = "mercadopago"
)

// PurchaseStatus mirrors the provider's payment status. The set is open:
// any string the provider reports is stored as-is.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusRejected  PurchaseStatus = "rejected"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
	PurchaseStatusInProcess PurchaseStatus = "in_process"
	PurchaseStatusUnknown   PurchaseStatus = "unknown"
)

func (s PurchaseStatus) Approved() bool {
	return s == PurchaseStatusApproved
}

// FundingSource records whose credential created the checkout preference.
type FundingSource string

const (
	FundingSourceSeller   FundingSource = "seller"
	FundingSourcePlatform FundingSource = "platform"
)
