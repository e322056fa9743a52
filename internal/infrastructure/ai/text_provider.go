// Package ai adapts hosted model APIs to the assistant provider contracts.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/infrastructure/config"
)

const defaultProviderTimeout = 20 * time.Second

// Compile-time interface assertion
var _ assistant.TextProvider = (*ChatProvider)(nil)

// ChatProvider talks to any OpenAI-compatible chat-completions endpoint
type ChatProvider struct {
	name     string
	model    string
	priority int
	enabled  bool
	client   openai.Client
	logger   *zap.Logger
}

// ChatProviderConfig configures a ChatProvider
type ChatProviderConfig struct {
	Name       string
	BaseURL    string
	APIKey     string
	Model      string
	Priority   int
	Timeout    time.Duration
	Enabled    bool
	RequireKey bool
	HTTPClient *http.Client
}

// NewChatProvider creates a ChatProvider. It is enabled only when cfg.Enabled
// is set, a base URL and model are present and, when RequireKey is set, an
// API key is configured.
func NewChatProvider(cfg ChatProviderConfig, logger *zap.Logger) *ChatProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	baseURL := strings.TrimSpace(cfg.BaseURL)

	enabled := cfg.Enabled && baseURL != "" && strings.TrimSpace(cfg.Model) != ""
	if cfg.RequireKey && apiKey == "" {
		enabled = false
	}

	// Retries stay off since the orchestrator owns fallback.
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
		option.WithAPIKey(apiKey),
	}
	if apiKey == "" {
		opts = append(opts, option.WithHeaderDel("Authorization"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &ChatProvider{
		name:     cfg.Name,
		model:    strings.TrimSpace(cfg.Model),
		priority: cfg.Priority,
		enabled:  enabled,
		client:   openai.NewClient(opts...),
		logger:   logger.Named("ai").With(zap.String("provider", cfg.Name)),
	}
}

func (p *ChatProvider) Name() string  { return p.name }
func (p *ChatProvider) Priority() int { return p.priority }
func (p *ChatProvider) Enabled() bool { return p.enabled }

// Complete sends a single-turn chat completion
func (p *ChatProvider) Complete(ctx context.Context, prompt assistant.Prompt) (string, error) {
	if !p.enabled {
		return "", assistant.ErrProviderDisabled
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	}
	if prompt.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(prompt.MaxTokens))
	}
	if prompt.Temperature > 0 {
		params.Temperature = openai.Float(prompt.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s: status %d", p.name, apiErr.StatusCode)
		}
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", assistant.ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", assistant.ErrEmptyCompletion
	}
	p.logger.Debug("completion received",
		zap.String("model", resp.Model),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

// NewTextProviders builds the fallback chain from configuration. Only
// Pollinations may run without an API key.
func NewTextProviders(cfg config.AssistantConfig, logger *zap.Logger) []assistant.TextProvider {
	entries := []struct {
		name       string
		pc         config.ProviderConfig
		requireKey bool
	}{
		{"pollinations", cfg.Pollinations, false},
		{"huggingface", cfg.HuggingFace, true},
		{"ionet", cfg.IONet, true},
		{"anthropic", cfg.Anthropic, true},
	}

	providers := make([]assistant.TextProvider, 0, len(entries))
	for _, e := range entries {
		p := NewChatProvider(ChatProviderConfig{
			Name:       e.name,
			BaseURL:    e.pc.BaseURL,
			APIKey:     e.pc.APIKey,
			Model:      e.pc.Model,
			Priority:   e.pc.Priority,
			Timeout:    e.pc.Timeout,
			Enabled:    e.pc.Enabled,
			RequireKey: e.requireKey,
		}, logger)
		if logger != nil {
			logger.Info("assistant provider configured",
				zap.String("provider", p.Name()),
				zap.Int("priority", p.Priority()),
				zap.Bool("enabled", p.Enabled()),
			)
		}
		providers = append(providers, p)
	}
	return providers
}
