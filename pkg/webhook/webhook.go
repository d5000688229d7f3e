// Package webhook provides HTTP client for sending analysis results to webhook endpoints.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ccollicutt/chatlens/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Event names carried in the payload.
const (
	EventCompleted = "analysis.completed"
	EventFailed    = "analysis.failed"
)

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event   string         `json:"event"`
	Sources []string       `json:"sources,omitempty"`
	Report  *output.Report `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// NewPayload builds the payload for one analysis run. A nil report or a
// non-nil err marks the run as failed.
func NewPayload(report *output.Report, sources []string, err error) *Payload {
	p := &Payload{
		Event:   EventCompleted,
		Sources: sources,
		Report:  report,
		SentAt:  time.Now().UTC(),
	}
	if err != nil || report == nil {
		p.Event = EventFailed
		p.Report = nil
		if err != nil {
			p.Error = err.Error()
		}
	}
	return p
}

// Succeeded reports whether the payload describes a completed analysis.
func (p *Payload) Succeeded() bool {
	return p.Event == EventCompleted
}

// Client sends analysis payloads to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a payload to a webhook endpoint.
func (c *Client) Send(ctx context.Context, payload *Payload, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	body, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal payload: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	// Apply timeout
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chatlens-webhook")
	req.Header.Set("X-Chatlens-Event", payload.Event)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	// Limit to 1MB
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}
