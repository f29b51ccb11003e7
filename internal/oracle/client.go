package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/pkg/httpretry"
)

const maxBodyBytes = 1 << 20

// Client calls the scoring oracle over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    httpretry.HTTPDoer
}

// NewClient creates an oracle client. A nil doer gets a retrying client
// built from cfg.MaxRetries.
func NewClient(cfg Config, doer httpretry.HTTPDoer) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{}, cfg.MaxRetries)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    doer,
	}
}

// IsConfigured returns true if a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Predict scores one payload. The returned probabilities are normalised and
// the label is the oracle's when it sends a valid one, else derived.
func (c *Client) Predict(ctx context.Context, payload features.Payload) (*Score, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "encode payload", Err: err}
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/predict", body)
	if err != nil {
		return nil, err
	}

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "decode predict response", Err: err}
	}
	return scoreFromResponse(resp)
}

func scoreFromResponse(resp predictResponse) (*Score, error) {
	if !resp.Success {
		return nil, &Error{Kind: KindInvalid, StatusCode: resp.StatusCode, Message: "success=false"}
	}
	if resp.Data == nil {
		return nil, &Error{Kind: KindMalformed, Message: "missing data"}
	}
	d := resp.Data
	if d.ProbabilityYes == nil || d.ProbabilityNo == nil {
		return nil, &Error{Kind: KindMalformed, Message: "missing probabilities"}
	}
	yes, no := *d.ProbabilityYes, *d.ProbabilityNo
	if !ValidProbability(yes) || !ValidProbability(no) {
		return nil, &Error{Kind: KindInvalid, Message: fmt.Sprintf("probabilities out of range (yes=%v no=%v)", yes, no)}
	}
	if yes == 0 && no == 0 {
		return nil, &Error{Kind: KindInvalid, Message: "both probabilities are zero"}
	}

	yes, no = Normalize(yes, no)
	score := &Score{ProbabilityYes: yes, ProbabilityNo: no, Class: DeriveClass(yes, no)}
	if d.PredictedClass != "" {
		class, ok := domain.ParseClass(d.PredictedClass)
		if !ok {
			return nil, &Error{Kind: KindInvalid, Message: fmt.Sprintf("unknown predicted_class %q", d.PredictedClass)}
		}
		score.Class = class
	}
	return score, nil
}

// Health fetches the oracle health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	var h Health
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "decode health response", Err: err}
	}
	return &h, nil
}

// ModelInfo returns the model block of the health report.
func (c *Client) ModelInfo(ctx context.Context) (*HealthMeta, error) {
	h, err := c.Health(ctx)
	if err != nil {
		return nil, err
	}
	return &h.Meta, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, &Error{Kind: KindTransport, Message: "oracle base URL not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// caller cancellation surfaces as-is so runs can tell it apart
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &Error{Kind: KindTransport, Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Message: truncate(string(raw), 200)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
