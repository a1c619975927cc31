package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayProvider creates orders against the Razorpay Orders API using
// key/secret basic auth. Amounts are converted to the smallest unit (paise).
type RazorpayProvider struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayProvider(baseURL, keyID, keySecret string) *RazorpayProvider {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayProvider{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type razorpayOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	payload := map[string]interface{}{
		"amount":   req.Amount * 100, // smallest currency unit
		"currency": req.Currency,
		"receipt":  req.OrderID,
		"notes":    map[string]string{"description": req.Description},
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(p.KeyID, p.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order failed: %d %s", resp.StatusCode, string(respBody))
	}
	var out razorpayOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &OrderResponse{ProviderRef: out.ID, Status: out.Status}, nil
}

// CaptureOrder checks the order status; Razorpay marks orders paid once the
// checkout flow captures the payment.
func (p *RazorpayProvider) CaptureOrder(ctx context.Context, providerRef string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.BaseURL+"/v1/orders/"+providerRef, nil)
	if err != nil {
		return false, err
	}
	httpReq.SetBasicAuth(p.KeyID, p.KeySecret)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("razorpay order status failed: %d %s", resp.StatusCode, string(respBody))
	}
	var out razorpayOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, err
	}
	return out.Status == "paid", nil
}
