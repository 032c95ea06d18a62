// Package genai is a small client for the Gemini generateContent REST API,
// plus the assistant, document-extraction, and charter-generation calls
// built on it.
package genai

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
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"

	requestTimeout = 90 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	maxAttempts    = 3
	retryBackoff   = time.Second
)

var (
	// ErrNoAPIKey is returned by a nil Client.
	ErrNoAPIKey = errors.New("GEMINI_API_KEY is not configured")
	// ErrOverloaded means every attempt got HTTP 503.
	ErrOverloaded = errors.New("All available AI models are temporarily overloaded. Please try again later.") //nolint:staticcheck // shown to users verbatim
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("genai: unauthorized (API key invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("genai: rate limited")
	// ErrEmptyMessage is returned by Chat for a blank message.
	ErrEmptyMessage = errors.New("No message provided") //nolint:staticcheck // shown to users verbatim
)

// APIError is a non-retryable error status from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("genai: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("genai: status %d: %s", e.StatusCode, e.Message)
}

// errUnavailable marks a 503 response inside the retry loop.
var errUnavailable = errors.New("genai: service unavailable")

// Client calls generateContent for one model.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	log     *slog.Logger
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model name.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithBackoff sets the base retry delay; attempt n waits n times this.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a client for apiKey. Returns nil if the key is empty;
// every method on a nil Client returns ErrNoAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		log:     slog.Default(),
		backoff: retryBackoff,
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// generate sends req, retrying HTTP 503 with a linearly growing delay.
func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	if c == nil {
		return "", ErrNoAPIKey
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.do(ctx, req)
		if !errors.Is(err, errUnavailable) {
			return text, err
		}
		if attempt == maxAttempts {
			break
		}
		delay := time.Duration(attempt) * c.backoff
		c.log.Warn("model overloaded, retrying", "model", c.model, "attempt", attempt, "delay", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", ErrOverloaded
}

func (c *Client) do(ctx context.Context, gr generateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	payload, err := json.Marshal(gr)
	if err != nil {
		return "", fmt.Errorf("genai: encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("genai: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("User-Agent", "github.com/theirongolddev/pmx/1.0")

	//nolint:gosec // URL is built from configured base URL
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("genai: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		return "", errUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		_ = json.Unmarshal(body, &er)
		return "", &APIError{StatusCode: resp.StatusCode, Message: er.Error.Message}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("genai: parsing response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("genai: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", errors.New("genai: empty response")
	}
	return out.text(), nil
}

// Generate sends a single text prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, generateRequest{Contents: []content{userText(prompt)}})
}
