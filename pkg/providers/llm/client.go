// Package llm is a chat completions client for OpenAI-compatible APIs. The
// same client serves OpenAI and OpenRouter with different configuration.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/errs"
)

const (
	opGenerate      = "generate_blog_post"
	maxErrorBodyLen = 512
)

// Client generates blog posts through a chat completions endpoint. It
// implements protocol.BlogGenerator.
type Client struct {
	name       string
	cfg        config.LLMConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client built from the configured timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client named after its provider. A missing API key is a
// configuration error.
func New(name string, cfg config.LLMConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("module", "llm", "provider", name),
	}

	for _, opt := range opts {
		opt(c)
	}

	err := c.Authenticate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) Name() string {
	return c.name
}

// Authenticate checks that credentials are configured. It does not call the API.
func (c *Client) Authenticate() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errs.Configurationf("%s API key not found in configuration", c.name)
	}

	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateBlogPost asks the model for a markdown post written from transcript.
func (c *Client) GenerateBlogPost(ctx context.Context, transcript, tone, style string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", errs.Validationf("transcript is empty")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(tone, style)},
			{Role: "user", Content: transcript},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", c.fail(0, nil, fmt.Errorf("encoding request: %w", err))
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(0, nil, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "requesting completion", "model", c.cfg.Model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError(ctx, err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.transportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp.StatusCode, payload)
	}

	var completion chatResponse

	err = json.Unmarshal(payload, &completion)
	if err != nil {
		return "", c.fail(resp.StatusCode, nil, fmt.Errorf("decoding response: %w", err))
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", c.fail(resp.StatusCode, nil, errors.New("no completion received"))
	}

	c.logger.InfoContext(ctx, "completion received",
		"model", c.cfg.Model,
		"total_tokens", completion.Usage.TotalTokens,
		"finish_reason", completion.Choices[0].FinishReason,
	)

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return c.fail(0, errs.ErrTimeout, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return c.fail(0, nil, err)
}

func (c *Client) statusError(status int, payload []byte) error {
	var kind error

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = errs.ErrAuthentication
	case status == http.StatusTooManyRequests:
		kind = errs.ErrRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = errs.ErrTimeout
	}

	return c.fail(status, kind, errors.New(errorMessage(payload)))
}

func (c *Client) fail(status int, kind, err error) error {
	providerErr := errs.NewProviderError(c.name, opGenerate, kind, err)
	providerErr.StatusCode = status

	return providerErr
}

func errorMessage(payload []byte) string {
	var apiErr errorResponse
	if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	msg := strings.TrimSpace(string(payload))
	if len(msg) > maxErrorBodyLen {
		msg = msg[:maxErrorBodyLen]
	}

	if msg == "" {
		msg = "empty response"
	}

	return msg
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var te timeoutError

	return errors.As(err, &te) && te.Timeout()
}

func systemPrompt(tone, style string) string {
	return fmt.Sprintf(
		"You write blog posts from video transcripts. Write a %s blog post in a %s tone. "+
			"Use markdown with a single H1 title followed by H2 sections. "+
			"Keep the facts from the transcript and do not invent new ones.",
		style, tone,
	)
}
