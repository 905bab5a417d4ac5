package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type Attachment struct {
	Filename string
	Content  []byte
}

type Message struct {
	To         string
	Subject    string
	HTML       string
	Attachment *Attachment
}

// Sender delivers a single transactional email. Implementations are
// best-effort: callers log failures and move on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the HTTP client when an API key is configured, otherwise a
// no-op sender. Absence of mail config disables delivery without sprinkling
// env checks through the business logic.
func New(baseURL, apiKey, from string) Sender {
	if apiKey == "" {
		log.Printf("[mailer] disabled: set MAIL_API_KEY to enable email delivery")
		return &Disabled{}
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		From:    from,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Client posts to the transactional email API.
type Client struct {
	BaseURL string
	APIKey  string
	From    string
	client  *http.Client
}

type sendRequest struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	Attachments []attachmentEntry `json:"attachments,omitempty"`
}

type attachmentEntry struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	payload := sendRequest{
		From:    c.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if msg.Attachment != nil {
		payload.Attachments = append(payload.Attachments, attachmentEntry{
			Filename: msg.Attachment.Filename,
			Content:  base64.StdEncoding.EncodeToString(msg.Attachment.Content),
		})
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail send: %d %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Disabled drops every message.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, msg Message) error {
	log.Printf("[mailer] skipped (disabled): to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
