// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

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

	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Configuration constants for the completion API.
const (
	// DefaultBaseURL is the r9s gateway.
	DefaultBaseURL = "https://api.r9s.ai"

	// DefaultTimeout bounds buffered requests. Streaming requests are
	// bounded by their context only.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum accepted buffered response body.
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is sent with every request.
	UserAgent = "r9s-cli/0.3.0"

	completionsPath = "/v1/chat/completions"
)

var (
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// No client timeout; cancelled through the request context.
	sharedStreamingClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
	}
)

// Error variables for common API failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// APIError is a non-2xx response from the completion API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Usage holds token accounting for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type completionRequest struct {
	Model         string            `json:"model"`
	Messages      []chatext.Message `json:"messages"`
	Stream        bool              `json:"stream"`
	StreamOptions *streamOptions    `json:"stream_options,omitempty"`
}

// ContentPart is one typed element of a multi-part message body.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Content is a message body: either plain text or a list of typed parts.
type Content struct {
	text  *string
	parts []ContentPart
}

// TextContent returns Content holding s.
func TextContent(s string) Content {
	return Content{text: &s}
}

// PartsContent returns Content holding parts.
func PartsContent(parts ...ContentPart) Content {
	return Content{parts: parts}
}

// UnmarshalJSON accepts a string, an array of parts, or null.
func (c *Content) UnmarshalJSON(data []byte) error {
	*c = Content{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		c.text = &s
		return nil
	case trimmed[0] == '[':
		return json.Unmarshal(trimmed, &c.parts)
	default:
		return fmt.Errorf("unsupported message content: %.40s", trimmed)
	}
}

// MarshalJSON writes the text form or the parts form.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.text != nil {
		return json.Marshal(*c.text)
	}
	if c.parts != nil {
		return json.Marshal(c.parts)
	}
	return []byte("null"), nil
}

// Text returns the plain text of the content. For multi-part content only
// parts of type "text" are concatenated; other modalities are skipped.
func (c Content) Text() string {
	if c.text != nil {
		return *c.text
	}
	var sb strings.Builder
	for _, p := range c.parts {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Message is the assistant message of a buffered completion.
type Message struct {
	Role      string          `json:"role"`
	Content   Content         `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type apiErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the chat completions endpoint of one gateway.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	streamHTTP *http.Client
	log        *zap.Logger
}

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: sharedHTTPClient,
		streamHTTP: sharedStreamingClient,
		log:        zap.NewNop(),
	}
}

// WithHTTPClient replaces the HTTP client used for both modes.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streamHTTP = hc
	return c
}

// WithLogger sets the logger for request diagnostics.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	if log != nil {
		c.log = log.Named("cloud")
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// endpoint returns the completions URL. Base URLs that already end in
// /v1 are not given a second version segment.
func (c *Client) endpoint() string {
	if strings.HasSuffix(c.baseURL, "/v1") {
		return c.baseURL + "/chat/completions"
	}
	return c.baseURL + completionsPath
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request, stream bool) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) newRequest(ctx context.Context, body completionRequest) (*http.Request, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if body.Messages == nil {
		body.Messages = []chatext.Message{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, body.Stream)
	return req, nil
}

// Complete performs a buffered completion and returns the first choice's
// message. A response without choices yields an empty assistant message.
func (c *Client) Complete(ctx context.Context, model string, messages []chatext.Message) (*Message, error) {
	req, err := c.newRequest(ctx, completionRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.log.Debug("completion request", zap.String("model", model), zap.Int("messages", len(messages)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("completion response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return &Message{Role: chatext.RoleAssistant}, nil
	}
	msg := out.Choices[0].Message
	return &msg, nil
}

// CompleteStream opens a streaming completion. The caller must Close the
// returned stream.
func (c *Client) CompleteStream(ctx context.Context, model string, messages []chatext.Message) (*Stream, error) {
	req, err := c.newRequest(ctx, completionRequest{
		Model:         model,
		Messages:      messages,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("stream request", zap.String("model", model), zap.Int("messages", len(messages)))
	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.log.Debug("stream response", zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, err := readResponse(resp)
		if err != nil {
			return nil, err
		}
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return NewStream(resp.Body), nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg := apiErr.Error.Message
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %s", ErrInsufficientCredits, msg)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, msg)
		default:
			return &APIError{Code: errorCode(apiErr.Error.Code), Message: msg, Status: statusCode}
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Message: strings.TrimSpace(string(body)), Status: statusCode}
	}
}

// errorCode accepts string or numeric error codes.
func errorCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
