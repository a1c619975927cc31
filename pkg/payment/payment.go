package payment

import (
	"context"
)

// OrderRequest describes a donation order to be created with a provider.
type OrderRequest struct {
	OrderID     string // our reference, unique per order
	Amount      int64  // whole currency units
	Currency    string
	Description string
}

// OrderResponse is the provider's view of a created order.
type OrderResponse struct {
	ProviderRef string // provider-side order id
	ApproveURL  string // where the donor completes checkout (may be empty)
	Status      string
}

// Provider abstracts a payment gateway: order creation plus capture
// confirmation. The platform trusts the capture response, it performs no
// independent verification of payment authenticity.
type Provider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	CaptureOrder(ctx context.Context, providerRef string) (bool, error)
}
