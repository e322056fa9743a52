package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/infrastructure/config"
)

// MaxImageBytes caps a generated image body
const MaxImageBytes = 10 << 20

const (
	defaultImageBaseURL = "https://image.pollinations.ai"
	defaultImageTimeout = 60 * time.Second
)

var (
	// ErrNotAnImage is returned when the provider answers with a non-image body
	ErrNotAnImage = errors.New("ai: response is not an image")
	// ErrImageTooLarge is returned when the body exceeds MaxImageBytes
	ErrImageTooLarge = errors.New("ai: image exceeds size limit")
)

var _ assistant.ImageProvider = (*PollinationsImageProvider)(nil)

// PollinationsImageProvider renders images through the Pollinations GET API
type PollinationsImageProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewPollinationsImageProvider returns nil when image generation is disabled
func NewPollinationsImageProvider(cfg config.ImageConfig, logger *zap.Logger) *PollinationsImageProvider {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultImageBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &PollinationsImageProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("ai").With(zap.String("provider", "pollinations-image")),
	}
}

func (p *PollinationsImageProvider) Name() string { return "pollinations-image" }

func (p *PollinationsImageProvider) requestURL(prompt assistant.ImagePrompt) string {
	q := url.Values{}
	if prompt.Width > 0 {
		q.Set("width", strconv.Itoa(prompt.Width))
	}
	if prompt.Height > 0 {
		q.Set("height", strconv.Itoa(prompt.Height))
	}
	if prompt.Seed != 0 {
		q.Set("seed", strconv.FormatInt(prompt.Seed, 10))
	}
	q.Set("nologo", "true")
	return p.baseURL + "/prompt/" + url.PathEscape(prompt.Prompt) + "?" + q.Encode()
}

// Generate downloads the rendered image
func (p *PollinationsImageProvider) Generate(ctx context.Context, prompt assistant.ImagePrompt) (*assistant.GeneratedImage, error) {
	if strings.TrimSpace(prompt.Prompt) == "" {
		return nil, errors.New("ai: image prompt is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("image request: status %d", resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrNotAnImage
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}

	p.logger.Debug("image generated",
		zap.Int("bytes", len(data)),
		zap.String("content_type", mediaType),
		zap.Duration("duration", time.Since(start)),
	)
	return &assistant.GeneratedImage{Data: data, ContentType: mediaType, Provider: p.Name()}, nil
}
