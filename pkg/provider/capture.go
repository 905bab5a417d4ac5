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

// CaptureClient talks to the BNPL provider whose redirect flow hands back a
// token that must be authorized and then captured server-side before the
// money actually moves.
type CaptureClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewCaptureClient(baseURL, apiKey string) *CaptureClient {
	return &CaptureClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type Authorization struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"` // approved, declined, expired
	AmountCents int64    `json:"amount_cents"`
	Currency    string   `json:"currency"`
	Customer    Customer `json:"customer"`
	Items       []Item   `json:"items"`
}

type Capture struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
}

// Authorize presents the redirect token back to the provider. A declined or
// expired token comes back with its status; only transport and non-2xx
// responses are errors.
func (c *CaptureClient) Authorize(ctx context.Context, token string) (*Authorization, error) {
	body, _ := json.Marshal(map[string]string{"checkout_token": token})
	var out Authorization
	if err := c.post(ctx, "/v1/authorizations", body, &out); err != nil {
		return nil, fmt.Errorf("bnpl authorize: %w", err)
	}
	return &out, nil
}

// Capture settles an approved authorization. The returned Reference is the
// provider's durable payment identifier.
func (c *CaptureClient) Capture(ctx context.Context, authorizationID string) (*Capture, error) {
	var out Capture
	if err := c.post(ctx, "/v1/authorizations/"+authorizationID+"/capture", nil, &out); err != nil {
		return nil, fmt.Errorf("bnpl capture: %w", err)
	}
	return &out, nil
}

func (c *CaptureClient) post(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %d %s", path, resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
