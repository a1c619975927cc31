package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// PayPalProvider creates and captures orders against the PayPal Orders v2 API.
type PayPalProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	client       *http.Client
}

func NewPayPalProvider(baseURL, clientID, clientSecret string) *PayPalProvider {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type paypalTokenResp struct {
	AccessToken string `json:"access_token"`
}

func (p *PayPalProvider) getToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v1/oauth2/token", bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.ClientID + ":" + p.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token failed: %d %s", resp.StatusCode, string(body))
	}
	var out paypalTokenResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("paypal: token response empty")
	}
	return out.AccessToken, nil
}

type paypalOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": req.OrderID,
			"description":  req.Description,
			"amount": map[string]string{
				"currency_code": req.Currency,
				"value":         strconv.FormatInt(req.Amount, 10),
			},
		}},
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paypal create order failed: %d %s", resp.StatusCode, string(respBody))
	}
	var out paypalOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	approve := ""
	for _, l := range out.Links {
		if l.Rel == "approve" {
			approve = l.Href
		}
	}
	return &OrderResponse{ProviderRef: out.ID, ApproveURL: approve, Status: out.Status}, nil
}

func (p *PayPalProvider) CaptureOrder(ctx context.Context, providerRef string) (bool, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return false, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v2/checkout/orders/"+providerRef+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return false, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("paypal capture failed: %d %s", resp.StatusCode, string(respBody))
	}
	var out paypalOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, err
	}
	return out.Status == "COMPLETED", nil
}
