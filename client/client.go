// Package client submits serialized pipelines to the validation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meikuraledutech/pipeline"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	parsePath      = "/pipelines/parse"
	maxErrorBody   = 512
)

// Client talks to one validation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the service at baseURL, or DefaultBaseURL when
// baseURL is empty.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts p once and decodes the service's verdict. It never retries.
// Failures are *SubmissionError values; a cancelled ctx is reported as
// KindNetwork wrapping ctx.Err().
func (c *Client) Submit(ctx context.Context, p pipeline.Payload) (*pipeline.Outcome, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("client: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+parsePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("submitting pipeline", "nodes", len(p.Nodes), "edges", len(p.Edges), "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SubmissionError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &SubmissionError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	var out pipeline.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &SubmissionError{Kind: KindDecode, Err: err}
	}
	c.log.Debug("pipeline validated", "is_dag", out.IsDAG, "nodes", out.NodeCount, "edges", out.EdgeCount)
	return &out, nil
}
