// Package deepseek implementa chat.Completer contra la API compatible con OpenAI de DeepSeek.
package deepseek

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/platform/logger"
)

const (
	DefaultBaseURL     = "https://api.deepseek.com/v1"
	DefaultModel       = "deepseek-chat"
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.7
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	// Temperature nil = DefaultTemperature. 0 es válido (respuestas deterministas).
	Temperature *float64
	MaxRetries  int

	// HTTPClient opcional (tests).
	HTTPClient *http.Client
}

type Client struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	log         logger.Logger
}

func New(cfg Config, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("deepseek: API key is required")
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if math.IsNaN(temperature) || temperature < 0 || temperature > 2 {
		return nil, fmt.Errorf("deepseek: temperature must be between 0 and 2, got %v", temperature)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         logger.OrNop(log).With(map[string]any{"component": "deepseek"}),
	}, nil
}

func (c *Client) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toParams(messages),
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Error("deepseek api error", map[string]any{"status": apiErr.StatusCode})
			return "", &chat.UpstreamError{Status: apiErr.StatusCode, Err: err}
		}
		c.log.Error("deepseek request failed", map[string]any{"err": err.Error()})
		return "", &chat.UpstreamError{Err: fmt.Errorf("deepseek: %w", err)}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", chat.ErrNoReply
	}
	return resp.Choices[0].Message.Content, nil
}

func toParams(messages []chat.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
