// Package openrouter implements a text-generation client for OpenRouter and
// other OpenAI-compatible chat completion endpoints.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config holds the connection settings for the chat completion endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	Timeout     time.Duration
	// Referer and Title are optional OpenRouter attribution headers.
	Referer string
	Title   string
}

// Client sends single-message chat completion requests.
type Client struct {
	client      openai.Client
	model       string
	temperature *float32
	log         *slog.Logger
}

// NewClient creates a chat completion client. SDK retries are disabled: the
// caller decides whether a failed call is attempted again.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if log == nil {
		log = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/"),
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	logger := log.With("component", "openrouter_client")
	logger.Info("Chat completion client initialized", "base_url", cfg.BaseURL, "model", cfg.Model)

	return &Client{
		client:      openai.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
		log:         logger,
	}, nil
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(float64(*c.temperature))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.DebugContext(ctx, "Chat completion rejected", "status", apiErr.StatusCode, "duration", time.Since(start))
			return "", fmt.Errorf("chat completion failed with status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.log.DebugContext(ctx, "Chat completion received", "model", resp.Model, "duration", time.Since(start))
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
