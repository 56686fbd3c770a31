// Package openai is the OpenAI-compatible chat completion client that
// generates replies from the retrieved context.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
)

var (
	// ErrMissingAPIKey is returned when no usable API key is configured.
	ErrMissingAPIKey = errors.New("openai api key not configured")
	// ErrGeneration wraps every failed completion request.
	ErrGeneration = errors.New("generation failed")
)

const placeholderKey = "your-api-key-here"

// Config configures the chat completion client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	Logger      *zap.Logger
}

// Client generates chat completions.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	maxRetries  int
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
}

// ResolveAPIKey reads the API key from the environment variable envName.
// Surrounding quotes are stripped and the template placeholder counts as
// missing.
func ResolveAPIKey(envName string) (string, error) {
	if envName == "" {
		envName = "OPENAI_API_KEY"
	}
	key := strings.Trim(strings.TrimSpace(os.Getenv(envName)), `"'`)
	if key == "" || key == placeholderKey {
		return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, envName)
	}
	return key, nil
}

// NewClient creates a new chat completion client using the provided
// configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.APIKey == placeholderKey {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: t}
	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     t,
		maxRetries:  cfg.MaxRetries,
		backoff:     retryDelay,
		logger:      logger.OrNop(cfg.Logger),
	}, nil
}

// Name returns the model used for generation.
func (c *Client) Name() string { return c.model }

// Generate sends the system prompt and user message and returns the trimmed
// reply. Rate-limit and server errors are retried with capped exponential
// backoff.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", c.fail(ctx.Err())
			case <-time.After(c.backoff(attempt - 1)):
			}
		}
		reply, err := c.complete(ctx, req)
		if err == nil {
			metrics.GenerationRequestsTotal.WithLabelValues(c.model, "success").Inc()
			metrics.GenerationDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
			return reply, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		c.logger.Warn("chat completion failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err),
		)
	}
	return "", c.fail(lastErr)
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) fail(err error) error {
	metrics.GenerationRequestsTotal.WithLabelValues(c.model, "error").Inc()
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: api error %d: %s", ErrGeneration, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: request error %d: %s", ErrGeneration, reqErr.HTTPStatusCode, strings.TrimSpace(string(reqErr.Body)))
	}
	return fmt.Errorf("%w: %w", ErrGeneration, err)
}

// retryable reports whether a failed request may succeed when repeated:
// rate limits, server errors and transport failures.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
