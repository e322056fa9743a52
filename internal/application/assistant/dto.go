package assistant

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/domain/catalog"
)

// ChatRequest is one message from a shopper
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

// Attempt records one try against a text provider
type Attempt struct {
	Provider   string `json:"provider"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RecommendedProduct is a product suggested alongside a reply
type RecommendedProduct struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CrystalType string          `json:"crystal_type"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Reply           string               `json:"reply"`
	Source          assistant.Source     `json:"source"`
	Provider        string               `json:"provider,omitempty"`
	Crystals        []string             `json:"crystals"`
	Recommendations []RecommendedProduct `json:"recommendations"`
	Attempts        []Attempt            `json:"attempts"`
}

// DescribeRequest asks for a marketing description of a product
type DescribeRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// DescribeResponse carries the generated description
type DescribeResponse struct {
	ProductID   uuid.UUID        `json:"product_id"`
	Description string           `json:"description"`
	Source      assistant.Source `json:"source"`
	Provider    string           `json:"provider,omitempty"`
	Attempts    []Attempt        `json:"attempts"`
}

// MatchRequest describes what the shopper is looking for
type MatchRequest struct {
	Intentions []string `json:"intentions" binding:"max=10,dive,max=40"`
	BirthMonth int      `json:"birth_month" binding:"min=0,max=12"`
	Zodiac     string   `json:"zodiac" binding:"max=20"`
	Chakras    []string `json:"chakras" binding:"max=7,dive,max=20"`
	Limit      int      `json:"limit" binding:"min=0,max=20"`
}

// CrystalMatch is a scored crystal
type CrystalMatch struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// MatchResponse ranks crystals for the shopper
type MatchResponse struct {
	Matches         []CrystalMatch       `json:"matches"`
	Recommendations []RecommendedProduct `json:"recommendations"`
}

// MoonResponse is the moon phase with crystal guidance
type MoonResponse struct {
	Phase           string               `json:"phase"`
	Age             float64              `json:"age_days"`
	Illumination    float64              `json:"illumination"`
	Guidance        string               `json:"guidance"`
	Crystals        []string             `json:"crystals"`
	At              time.Time            `json:"at"`
	Recommendations []RecommendedProduct `json:"recommendations"`
}

// ImageRequest asks for a generated image
type ImageRequest struct {
	Prompt string `json:"prompt" binding:"required,min=3,max=500"`
	Width  int    `json:"width" binding:"omitempty,min=256,max=2048"`
	Height int    `json:"height" binding:"omitempty,min=256,max=2048"`
	Seed   int64  `json:"seed"`
}

// ImageResponse points at the stored image
type ImageResponse struct {
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	Provider    string    `json:"provider"`
}

// ProviderStatus reports the health of a text provider
type ProviderStatus struct {
	Name        string     `json:"name"`
	Priority    int        `json:"priority"`
	Enabled     bool       `json:"enabled"`
	Attempts    int64      `json:"attempts"`
	Failures    int64      `json:"failures"`
	LastError   string     `json:"last_error,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

func toRecommended(products []catalog.Product) []RecommendedProduct {
	out := make([]RecommendedProduct, len(products))
	for i, p := range products {
		out[i] = RecommendedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			CrystalType: p.CrystalType,
		}
	}
	return out
}
