package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FinalizeClient talks to the BNPL provider whose redirect flow settles with
// a single order-finalize call.
type FinalizeClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewFinalizeClient(baseURL, apiKey string) *FinalizeClient {
	return &FinalizeClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type SettledOrder struct {
	OrderID     string   `json:"order_id"`
	Status      string   `json:"status"` // settled, pending, declined
	AmountCents int64    `json:"amount_cents"`
	Currency    string   `json:"currency"`
	Customer    Customer `json:"customer"`
	Items       []Item   `json:"items"`
}

// FinalizeOrder exchanges the redirect token for the settled order.
func (c *FinalizeClient) FinalizeOrder(ctx context.Context, orderToken string) (*SettledOrder, error) {
	body, _ := json.Marshal(map[string]string{"order_token": orderToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders/finalize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bnpl finalize: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bnpl finalize: %d %s", resp.StatusCode, string(respBody))
	}
	var out SettledOrder
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
