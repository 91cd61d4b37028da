// Package backend is the wizard's HTTP client for the lead service: address
// search, OTP issuance and lead submission.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/logging"
)

// ErrStatus is wrapped by every error caused by a non-2xx response.
var ErrStatus = errors.New("unexpected response status")

// Client talks to the lead service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient builds a Client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Search implements location.Provider against GET /location.
func (c *Client) Search(ctx context.Context, query string) ([]api.Location, error) {
	endpoint := c.baseURL + "/location?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var out []api.Location
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("location search: %w", err)
	}
	if out == nil {
		out = []api.Location{}
	}
	return out, nil
}

// SendOTP asks the service to text a verification code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (api.SendOTPResponse, error) {
	var out api.SendOTPResponse
	req, err := c.jsonRequest(ctx, "/otp/send-otp", api.SendOTPRequest{PhoneNumber: phone})
	if err != nil {
		return out, err
	}
	if err := c.do(req, &out); err != nil {
		return out, fmt.Errorf("send otp: %w", err)
	}
	return out, nil
}

// SubmitLead posts payload to endpoint. Any 2xx response is success.
func (c *Client) SubmitLead(ctx context.Context, endpoint string, payload any) error {
	req, err := c.jsonRequest(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		c.logger.Warn("lead submission failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("submit lead: %w", err)
	}
	c.logger.Info("lead submitted", "endpoint", endpoint)
	return nil
}

func (c *Client) jsonRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var result api.Result
	if json.Unmarshal(body, &result) == nil && result.Error != "" {
		return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, result.Error)
	}
	return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
}
