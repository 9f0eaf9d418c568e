// Package notify delivers outbound messages (report emails, password resets) by posting JSON to a
// webhook such as an n8n or mail-relay flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Message kinds.
const (
	KindPasswordReset = "password_reset"
	KindReport        = "report"
)

// ErrNotConfigured is returned when the webhook URL is empty.
var ErrNotConfigured = errors.New("notify: webhook URL not configured")

// Message is the JSON body posted to the webhook.
type Message struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Name    string `json:"name,omitempty"`
	Subject string `json:"subject,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Notifier sends a message to one recipient.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// WebhookClient posts messages to a webhook URL.
type WebhookClient struct {
	URL        string
	Token      string
	HTTPClient *http.Client
}

// NewWebhookClient returns a client for url. token, when set, is sent as a Bearer Authorization header.
func NewWebhookClient(url, token string) *WebhookClient {
	return &WebhookClient{
		URL:        url,
		Token:      token,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts msg as JSON. Any non-2xx response is an error carrying the response body.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	if c.URL == "" {
		return ErrNotConfigured
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify: %s request failed status=%d body=%s", msg.Kind, resp.StatusCode, string(b))
	}
	return nil
}

// LogNotifier stands in when no webhook is configured. It records that a message would have been
// sent without logging its data.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Send(_ context.Context, msg Message) error {
	if n.Logger != nil {
		n.Logger.Info("notify: webhook not configured, message dropped",
			zap.String("kind", msg.Kind), zap.String("to", msg.To))
	}
	return nil
}

// New returns a WebhookClient for url, or a LogNotifier when url is empty.
func New(url, token string, logger *zap.Logger) Notifier {
	if url == "" {
		return LogNotifier{Logger: logger}
	}
	return NewWebhookClient(url, token)
}
