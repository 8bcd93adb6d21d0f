// Package mailer sends transactional email through an HTTP email API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/pkg/circuitbreaker"
)

const defaultBaseURL = "https://api.resend.com"

// Config holds mailer settings.
type Config struct {
	APIKey  string
	From    string
	BaseURL string
	Timeout time.Duration
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Client is the email API client. Sends run through a circuit breaker; a
// provider outage should shed email load, not block event consumption.
type Client struct {
	config  Config
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a mailer client.
func NewClient(cfg Config, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Send delivers one email.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	body, err := json.Marshal(map[string]any{
		"from":    c.config.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	_, err = c.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.post(ctx, body)
	})
	if err != nil {
		return err
	}

	c.logger.Debug("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("email rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}
