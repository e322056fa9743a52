package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/catalog"
)

// ImageStore persists generated images and hands out download links
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ProductFinder is the slice of the catalog the assistant reads
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByCrystalTypes(ctx context.Context, crystalTypes []string, limit int) ([]catalog.Product, error)
}
