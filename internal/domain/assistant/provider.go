// Package assistant holds the crystal knowledge, the keyword templates and the
// provider contracts behind the storefront's AI features.
package assistant

import (
	"context"
	"errors"
)

var (
	// ErrProviderDisabled is returned by a provider that is not configured
	ErrProviderDisabled = errors.New("assistant: provider disabled")
	// ErrEmptyCompletion is returned when a provider answers with no text
	ErrEmptyCompletion = errors.New("assistant: empty completion")
)

// Prompt is a single-turn request to a text model
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// TextProvider is one entry in the fallback chain. Lower Priority is tried first.
type TextProvider interface {
	Name() string
	Priority() int
	Enabled() bool
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ImagePrompt describes an image to generate
type ImagePrompt struct {
	Prompt string
	Width  int
	Height int
	Seed   int64
}

// GeneratedImage is raw image bytes with their media type
type GeneratedImage struct {
	Data        []byte
	ContentType string
	Provider    string
}

// ImageProvider turns a prompt into an image
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, prompt ImagePrompt) (*GeneratedImage, error)
}

// Source says where a reply came from
type Source string

const (
	SourceProvider Source = "provider"
	SourceTemplate Source = "template"
)
