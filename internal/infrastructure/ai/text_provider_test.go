package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/infrastructure/config"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestChatProvider_Complete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("  Amethyst suits you.  "))
	}))
	defer srv.Close()

	p := NewChatProvider(ChatProviderConfig{
		Name:       "ionet",
		BaseURL:    srv.URL,
		APIKey:     "secret",
		Model:      "test-model",
		Priority:   3,
		Enabled:    true,
		RequireKey: true,
	}, zap.NewNop())
	require.True(t, p.Enabled())

	text, err := p.Complete(context.Background(), assistant.Prompt{
		System:      "be nice",
		User:        "calm please",
		MaxTokens:   100,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Amethyst suits you.", text)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "test-model", gotBody["model"])
	assert.EqualValues(t, 100, gotBody["max_tokens"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestChatProvider_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("server error is not retried", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		}))
		defer srv.Close()

		p := NewChatProvider(ChatProviderConfig{Name: "huggingface", BaseURL: srv.URL, APIKey: "k", Model: "m", Enabled: true}, nil)
		_, err := p.Complete(ctx, assistant.Prompt{User: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, 1, calls)
	})

	t.Run("empty completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(completionBody(""))
		}))
		defer srv.Close()

		p := NewChatProvider(ChatProviderConfig{Name: "pollinations", BaseURL: srv.URL, Model: "openai", Enabled: true}, nil)
		_, err := p.Complete(ctx, assistant.Prompt{User: "hi"})
		assert.ErrorIs(t, err, assistant.ErrEmptyCompletion)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		p := NewChatProvider(ChatProviderConfig{Name: "anthropic", BaseURL: srv.URL, APIKey: "k", Model: "m",
			Enabled: true, Timeout: 50 * time.Millisecond}, nil)
		_, err := p.Complete(ctx, assistant.Prompt{User: "hi"})
		require.Error(t, err)
	})

	t.Run("disabled provider", func(t *testing.T) {
		p := NewChatProvider(ChatProviderConfig{Name: "anthropic", BaseURL: "http://localhost", Model: "m",
			Enabled: true, RequireKey: true}, nil)
		assert.False(t, p.Enabled())
		_, err := p.Complete(ctx, assistant.Prompt{User: "hi"})
		assert.ErrorIs(t, err, assistant.ErrProviderDisabled)
	})
}

func TestNewTextProviders(t *testing.T) {
	cfg := config.AssistantConfig{
		Pollinations: config.ProviderConfig{Enabled: true, BaseURL: "https://text.pollinations.ai/openai", Model: "openai", Priority: 1},
		HuggingFace:  config.ProviderConfig{Enabled: true, BaseURL: "https://router.huggingface.co/v1", Model: "m", Priority: 2},
		IONet:        config.ProviderConfig{Enabled: true, BaseURL: "https://api.intelligence.io.solutions/api/v1", Model: "m", APIKey: "io", Priority: 3},
		Anthropic:    config.ProviderConfig{Enabled: false, BaseURL: "https://api.anthropic.com/v1/", Model: "m", APIKey: "sk", Priority: 4},
	}

	providers := NewTextProviders(cfg, zap.NewNop())
	require.Len(t, providers, 4)

	enabled := map[string]bool{}
	for _, p := range providers {
		enabled[p.Name()] = p.Enabled()
	}
	assert.True(t, enabled["pollinations"], "pollinations needs no key")
	assert.False(t, enabled["huggingface"], "huggingface without key")
	assert.True(t, enabled["ionet"])
	assert.False(t, enabled["anthropic"], "explicitly disabled")
}
