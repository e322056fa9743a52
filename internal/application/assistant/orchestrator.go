// Package assistant runs the AI provider fallback chain and the
// deterministic crystal helpers behind the storefront's assistant.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/shared"
)

const meterName = "github.com/troves/backend/assistant"

// Defaults applied when Config leaves a field zero
const (
	DefaultAttemptTimeout  = 20 * time.Second
	DefaultMaxTokens       = 400
	DefaultTemperature     = 0.7
	DefaultRecommendations = 4
	DefaultMatchLimit      = 5
	DefaultImageSize       = 1024
	DefaultImageURLExpiry  = 24 * time.Hour
)

// Config tunes the orchestrator
type Config struct {
	AttemptTimeout  time.Duration
	MaxTokens       int
	Temperature     float64
	Recommendations int
	ImageWidth      int
	ImageHeight     int
	ImageURLExpiry  time.Duration
}

func (c Config) withDefaults() Config {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Recommendations <= 0 {
		c.Recommendations = DefaultRecommendations
	}
	if c.ImageWidth <= 0 {
		c.ImageWidth = DefaultImageSize
	}
	if c.ImageHeight <= 0 {
		c.ImageHeight = DefaultImageSize
	}
	if c.ImageURLExpiry <= 0 {
		c.ImageURLExpiry = DefaultImageURLExpiry
	}
	return c
}

type providerStats struct {
	attempts    int64
	failures    int64
	lastError   string
	lastSuccess time.Time
	lastFailure time.Time
}

type instruments struct {
	attempts  metric.Int64Counter
	duration  metric.Float64Histogram
	fallbacks metric.Int64Counter
}

// Orchestrator tries text providers in priority order and falls back to
// keyword templates when all of them fail.
type Orchestrator struct {
	cfg       Config
	providers []assistant.TextProvider
	images    assistant.ImageProvider
	store     ImageStore
	products  ProductFinder
	logger    *zap.Logger
	inst      instruments
	now       func() time.Time

	mu    sync.Mutex
	stats map[string]*providerStats
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithImageGeneration enables GenerateImage
func WithImageGeneration(provider assistant.ImageProvider, store ImageStore) Option {
	return func(o *Orchestrator) {
		o.images = provider
		o.store = store
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithMeter records provider metrics on meter instead of the global one
func WithMeter(meter metric.Meter) Option {
	return func(o *Orchestrator) { o.inst = newInstruments(meter) }
}

// NewOrchestrator creates an Orchestrator. Providers are sorted by
// priority, ties broken by name.
func NewOrchestrator(
	cfg Config,
	providers []assistant.TextProvider,
	products ProductFinder,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	sorted := make([]assistant.TextProvider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority() != sorted[j].Priority() {
			return sorted[i].Priority() < sorted[j].Priority()
		}
		return sorted[i].Name() < sorted[j].Name()
	})

	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		cfg:       cfg.withDefaults(),
		providers: sorted,
		products:  products,
		logger:    logger.Named("assistant"),
		inst:      newInstruments(otel.Meter(meterName)),
		now:       time.Now,
		stats:     make(map[string]*providerStats, len(sorted)),
	}
	for _, p := range sorted {
		o.stats[p.Name()] = &providerStats{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newInstruments(meter metric.Meter) instruments {
	// Instrument creation only fails on invalid names, which are constants here.
	attempts, _ := meter.Int64Counter("assistant_provider_attempts_total",
		metric.WithDescription("Text provider attempts by outcome"))
	duration, _ := meter.Float64Histogram("assistant_provider_duration_seconds",
		metric.WithDescription("Text provider attempt duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.25, 0.5, 1, 2, 5, 10, 20, 30))
	fallbacks, _ := meter.Int64Counter("assistant_template_fallbacks_total",
		metric.WithDescription("Replies answered from templates after every provider failed"))
	return instruments{attempts: attempts, duration: duration, fallbacks: fallbacks}
}

// complete runs the fallback chain. It returns the winning provider name
// and text, or empty strings when no provider answered.
func (o *Orchestrator) complete(ctx context.Context, prompt assistant.Prompt) (string, string, []Attempt) {
	attempts := make([]Attempt, 0, len(o.providers))
	for _, p := range o.providers {
		if !p.Enabled() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
		text, err := p.Complete(attemptCtx, prompt)
		cancel()
		elapsed := time.Since(start)

		text = strings.TrimSpace(text)
		if err == nil && text == "" {
			err = assistant.ErrEmptyCompletion
		}
		o.record(ctx, p.Name(), elapsed, err)

		a := Attempt{Provider: p.Name(), DurationMs: elapsed.Milliseconds()}
		if err != nil {
			a.Error = err.Error()
			attempts = append(attempts, a)
			o.logger.Warn("provider attempt failed",
				zap.String("provider", p.Name()),
				zap.Duration("duration", elapsed),
				zap.Error(err),
			)
			continue
		}
		attempts = append(attempts, a)
		return p.Name(), text, attempts
	}
	return "", "", attempts
}

func (o *Orchestrator) record(ctx context.Context, provider string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
	}
	o.inst.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
	o.inst.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))

	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.stats[provider]
	if !ok {
		s = &providerStats{}
		o.stats[provider] = s
	}
	s.attempts++
	if err != nil {
		s.failures++
		s.lastError = err.Error()
		s.lastFailure = o.now()
		return
	}
	s.lastSuccess = o.now()
}

// Chat answers a shopper's message
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Message is required")
	}

	tpl, matched := assistant.MatchTemplate(message)
	provider, text, attempts := o.complete(ctx, assistant.Prompt{
		System:      chatSystemPrompt,
		User:        message,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})

	resp := &ChatResponse{Attempts: attempts}
	if text != "" {
		resp.Reply = text
		resp.Source = assistant.SourceProvider
		resp.Provider = provider
		resp.Crystals = assistant.FindCrystalsIn(text)
		if len(resp.Crystals) == 0 {
			resp.Crystals = assistant.FindCrystalsIn(message)
		}
		if len(resp.Crystals) == 0 && matched {
			resp.Crystals = tpl.CrystalNames()
		}
	} else {
		o.inst.fallbacks.Add(ctx, 1)
		o.logger.Info("answering from templates",
			zap.String("template", tpl.Name),
			zap.Int("attempts", len(attempts)),
		)
		resp.Reply = tpl.Render()
		resp.Source = assistant.SourceTemplate
		resp.Crystals = tpl.CrystalNames()
	}
	if resp.Crystals == nil {
		resp.Crystals = []string{}
	}

	resp.Recommendations = o.recommend(ctx, resp.Crystals)
	return resp, nil
}

// DescribeProduct writes a marketing description for a product
func (o *Orchestrator) DescribeProduct(ctx context.Context, productID uuid.UUID) (*DescribeResponse, error) {
	product, err := o.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	provider, text, attempts := o.complete(ctx, assistant.Prompt{
		System:      describeSystemPrompt,
		User:        describePrompt(product),
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})
	resp := &DescribeResponse{ProductID: product.ID, Attempts: attempts}
	if text != "" {
		resp.Description = text
		resp.Source = assistant.SourceProvider
		resp.Provider = provider
		return resp, nil
	}

	o.inst.fallbacks.Add(ctx, 1)
	resp.Description = fallbackDescription(product)
	resp.Source = assistant.SourceTemplate
	return resp, nil
}

// MatchCrystals scores the knowledge base against the shopper's answers
func (o *Orchestrator) MatchCrystals(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	matches, err := assistant.ScoreCrystals(assistant.MatchQuery{
		Intentions: req.Intentions,
		BirthMonth: req.BirthMonth,
		Zodiac:     req.Zodiac,
		Chakras:    req.Chakras,
	}, limit)
	if err != nil {
		return nil, err
	}

	resp := &MatchResponse{Matches: make([]CrystalMatch, len(matches))}
	names := make([]string, len(matches))
	for i, m := range matches {
		resp.Matches[i] = CrystalMatch{
			Name:    m.Crystal.Name,
			Summary: m.Crystal.Summary,
			Score:   m.Score,
			Reasons: m.Reasons,
		}
		names[i] = m.Crystal.Name
	}
	resp.Recommendations = o.recommend(ctx, names)
	return resp, nil
}

// MoonGuidance returns the moon phase at `at` with matching products.
// A zero time means now.
func (o *Orchestrator) MoonGuidance(ctx context.Context, at time.Time) (*MoonResponse, error) {
	if at.IsZero() {
		at = o.now()
	}
	phase := assistant.PhaseAt(at)
	return &MoonResponse{
		Phase:           phase.Name,
		Age:             phase.Age,
		Illumination:    phase.Illumination,
		Guidance:        phase.Guidance,
		Crystals:        phase.Crystals,
		At:              at.UTC(),
		Recommendations: o.recommend(ctx, phase.Crystals),
	}, nil
}

// GenerateImage creates an image, stores it and returns a download link
func (o *Orchestrator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if o.images == nil || o.store == nil {
		return nil, shared.NewDomainError("IMAGE_UNAVAILABLE", "Image generation is not configured")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Prompt is required")
	}
	width, height := req.Width, req.Height
	if width <= 0 {
		width = o.cfg.ImageWidth
	}
	if height <= 0 {
		height = o.cfg.ImageHeight
	}

	img, err := o.images.Generate(ctx, assistant.ImagePrompt{
		Prompt: prompt,
		Width:  width,
		Height: height,
		Seed:   req.Seed,
	})
	if err != nil {
		o.logger.Warn("image generation failed", zap.String("provider", o.images.Name()), zap.Error(err))
		return nil, shared.NewDomainError("IMAGE_UNAVAILABLE", "Image generation failed, please try again later")
	}

	key := o.imageKey(img.ContentType)
	if err := o.store.Upload(ctx, key, img.Data, img.ContentType); err != nil {
		return nil, fmt.Errorf("store generated image: %w", err)
	}
	url, expiresAt, err := o.store.GenerateDownloadURL(ctx, key, o.cfg.ImageURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign generated image: %w", err)
	}

	provider := img.Provider
	if provider == "" {
		provider = o.images.Name()
	}
	return &ImageResponse{
		URL:         url,
		ExpiresAt:   expiresAt,
		StorageKey:  key,
		ContentType: img.ContentType,
		Provider:    provider,
	}, nil
}

func (o *Orchestrator) imageKey(contentType string) string {
	now := o.now().UTC()
	return fmt.Sprintf("generated/%04d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.New(), imageExt(contentType))
}

func imageExt(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch mediaType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// ProviderStatus reports every registered text provider in chain order
func (o *Orchestrator) ProviderStatus() []ProviderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]ProviderStatus, 0, len(o.providers))
	for _, p := range o.providers {
		st := ProviderStatus{Name: p.Name(), Priority: p.Priority(), Enabled: p.Enabled()}
		if s, ok := o.stats[p.Name()]; ok {
			st.Attempts = s.attempts
			st.Failures = s.failures
			st.LastError = s.lastError
			if !s.lastSuccess.IsZero() {
				t := s.lastSuccess
				st.LastSuccess = &t
			}
			if !s.lastFailure.IsZero() {
				t := s.lastFailure
				st.LastFailure = &t
			}
		}
		out = append(out, st)
	}
	return out
}

// recommend never fails the request; a catalog error only drops the products.
func (o *Orchestrator) recommend(ctx context.Context, crystals []string) []RecommendedProduct {
	if len(crystals) == 0 || o.products == nil {
		return []RecommendedProduct{}
	}
	products, err := o.products.FindByCrystalTypes(ctx, crystals, o.cfg.Recommendations)
	if err != nil {
		o.logger.Warn("loading recommendations failed", zap.Strings("crystals", crystals), zap.Error(err))
		return []RecommendedProduct{}
	}
	active := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive() && len(active) < o.cfg.Recommendations {
			active = append(active, p)
		}
	}
	return toRecommended(active)
}
