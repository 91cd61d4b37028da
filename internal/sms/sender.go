// Package sms delivers verification codes by text message.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers a text message to an E.164 phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// LogSender writes messages to the logger instead of sending them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, phone, text string) error {
	s.logger.Info("sms dry-run", "to", Mask(phone), "text", text)
	return nil
}

// GatewaySender posts messages to a Mobizon-style HTTP gateway: a form with
// apiKey, recipient, text and an optional from, answered by {code, message}
// where code 0 means accepted.
type GatewaySender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// GatewayOptions configures a GatewaySender.
type GatewayOptions struct {
	Endpoint string
	APIKey   string
	From     string
	Client   *http.Client
}

// NewGatewaySender builds a GatewaySender.
func NewGatewaySender(opts GatewayOptions) *GatewaySender {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GatewaySender{endpoint: opts.Endpoint, apiKey: opts.APIKey, from: opts.From, client: client}
}

type gatewayResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// Send implements Sender.
func (s *GatewaySender) Send(ctx context.Context, phone, text string) error {
	form := url.Values{
		"apiKey":    {s.apiKey},
		"recipient": {strings.TrimPrefix(phone, "+")},
		"text":      {text},
	}
	if s.from != "" {
		form.Set("from", s.from)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result gatewayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse sms response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway error code %d: %s", result.Code, result.Message)
	}
	return nil
}

// Mask hides all but the last four digits of a phone number.
func Mask(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
