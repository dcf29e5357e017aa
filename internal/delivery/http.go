// Package delivery forwards accepted leads to the systems that act on them.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/pkg/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

// HTTPConfig describes the vendor lead endpoint.
type HTTPConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// HTTPForwarder POSTs the lead as JSON. It never retries.
type HTTPForwarder struct {
	client   *http.Client
	endpoint string
	token    string
	logger   *logging.Logger
}

// NewHTTPForwarder builds a forwarder with an instrumented client.
func NewHTTPForwarder(cfg HTTPConfig, logger *logging.Logger) *HTTPForwarder {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		panic("delivery: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPForwarder{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		logger:   logger,
	}
}

// WithClient swaps the HTTP client, mainly for tests.
func (f *HTTPForwarder) WithClient(client *http.Client) *HTTPForwarder {
	if client != nil {
		f.client = client
	}
	return f
}

func (f *HTTPForwarder) Forward(ctx context.Context, lead *leads.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("delivery: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("delivery: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Submission-ID", lead.ID)
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery: post lead: %w", err)
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delivery: endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	f.logger.Debug("lead forwarded", "submission_id", lead.ID, "status", resp.StatusCode)
	return nil
}

var _ leads.Transport = (*HTTPForwarder)(nil)
