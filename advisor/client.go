package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client sends a prompt to the advisory service and returns its text.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// =============================================================================
// HTTP CLIENT - generateContent REST endpoint
// =============================================================================

const (
	defaultHTTPTimeout = 60 * time.Second
	maxResponseBytes   = 4 << 20
)

// HTTPClient talks to a Gemini-style generateContent endpoint:
//
//	POST {endpoint}/models/{model}:generateContent
//	{"contents":[{"parts":[{"text": prompt}]}]}
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	models     map[Kind]string
	model      string
}

// NewHTTPClient creates a client. model is used for every kind unless
// overridden with WithModel.
func NewHTTPClient(endpoint, apiKey, model string) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
		models:     map[Kind]string{},
	}
}

// WithModel selects a different model for one kind of request.
func (c *HTTPClient) WithModel(kind Kind, model string) *HTTPClient {
	c.models[kind] = model
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	model := c.model
	if m, ok := c.models[req.Kind]; ok {
		model = m
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
		}
		return "", fmt.Errorf("advisor request failed: status %d: %s", resp.StatusCode, msg)
	}

	var text strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	return text.String(), nil
}

// =============================================================================
// OFFLINE CLIENTS
// =============================================================================

// Unavailable is the client used when no endpoint is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
}

// StaticClient answers every prompt with Text and remembers the last request.
// It is safe for concurrent use.
type StaticClient struct {
	Text string
	Err  error

	mu   sync.Mutex
	last Request
}

func (c *StaticClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.last = req
	c.mu.Unlock()
	return c.Text, c.Err
}

// LastRequest returns the most recent request passed to Generate.
func (c *StaticClient) LastRequest() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// IsUnavailable reports whether err means the service could not be used.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
