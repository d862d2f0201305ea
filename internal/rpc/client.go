package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/metrics"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

// maxResponseBytes bounds a single RPC answer; 100 full-size accounts in base64 fit well under it.
const maxResponseBytes = 64 << 20

// Commitment levels
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// Client is an HTTP client with retry and timeout support for Solana RPC
type Client struct {
	nextID       atomic.Uint64
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	commitment   string
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// Commitment used for reads and simulation; defaults to confirmed.
	Commitment string
	Logger     *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Commitment == "" {
		cfg.Commitment = CommitmentConfirmed
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		commitment:   cfg.Commitment,
		logger:       cfg.Logger,
	}
}

// StatusError is a non-200 answer from the RPC node.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Code == http.StatusTooManyRequests {
		return "rpc rate limited (429)"
	}
	return fmt.Sprintf("rpc status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the node may answer differently on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

const maxBackoff = 10 * time.Second

// Call sends one JSON-RPC request and decodes the whole envelope into result.
// Transport failures, 429 and 5xx are retried with doubling backoff; other
// statuses fail at once.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	data, err := sonic.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
				"error":   lastErr,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		body, err := c.post(ctx, data)
		if err != nil {
			lastErr = err
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.Retryable() {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if err := sonic.Unmarshal(body, result); err != nil {
			metrics.RPCRequestsTotal.WithLabelValues(method, "decode_error").Inc()
			return fmt.Errorf("decode %s response: %w", method, err)
		}

		metrics.RPCRequestsTotal.WithLabelValues(method, "ok").Inc()
		return nil
	}

	metrics.RPCRequestsTotal.WithLabelValues(method, "error").Inc()
	return fmt.Errorf("%s: max retries exceeded: %w", method, lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
