package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StubProvider is a no-op provider for development and tests: every order is
// created instantly and every capture succeeds.
type StubProvider struct{}

func (s *StubProvider) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	return &OrderResponse{
		ProviderRef: fmt.Sprintf("stub_%s_%d", req.OrderID, time.Now().UnixNano()),
		Status:      "CREATED",
	}, nil
}

func (s *StubProvider) CaptureOrder(ctx context.Context, providerRef string) (bool, error) {
	return strings.HasPrefix(providerRef, "stub_"), nil
}
